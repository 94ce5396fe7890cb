package rules

import (
	"reflect"
	"testing"
)

func TestOpenGraphRule(t *testing.T) {
	t.Parallel()

	markup := `<html><head>
<meta property="og:title" content="Title">
<meta property="og:description" content="   ">
<meta property="og:url" content="https://example.com/">
</head></html>`

	findings := NewOpenGraphRule().Evaluate(newInput(t, markup, Extras{}))
	expected := []string{"og-description", "og-image", "og-type"}
	if got := rulesOf(findings); !reflect.DeepEqual(got, expected) {
		t.Fatalf("expected %v, got %v", expected, got)
	}
	if findings[1].Message != "Missing Open Graph image (og:image)" {
		t.Errorf("unexpected message: %q", findings[1].Message)
	}
	if findings[1].Fix != `Add <meta property="og:image" content="..."> for better social media sharing` {
		t.Errorf("unexpected fix: %q", findings[1].Fix)
	}
}

func TestTwitterRule(t *testing.T) {
	t.Parallel()

	t.Run("property spelling is accepted", func(t *testing.T) {
		t.Parallel()
		markup := `<html><head>
<meta name="twitter:card" content="summary">
<meta property="twitter:title" content="Title">
<meta name="twitter:description" content="">
<meta property="twitter:description" content="Fallback">
</head></html>`

		findings := NewTwitterRule().Evaluate(newInput(t, markup, Extras{}))
		if got := rulesOf(findings); !reflect.DeepEqual(got, []string{"twitter-image"}) {
			t.Fatalf("expected only twitter-image, got %v", got)
		}
		if findings[0].Message != "Missing Twitter image (twitter:image)" {
			t.Errorf("unexpected message: %q", findings[0].Message)
		}
	})

	t.Run("all missing", func(t *testing.T) {
		t.Parallel()
		findings := NewTwitterRule().Evaluate(newInput(t, "<html></html>", Extras{}))
		expected := []string{"twitter-card", "twitter-title", "twitter-description", "twitter-image"}
		if got := rulesOf(findings); !reflect.DeepEqual(got, expected) {
			t.Errorf("expected %v, got %v", expected, got)
		}
		if findings[0].Message != "Missing Twitter card type (twitter:card)" {
			t.Errorf("unexpected message: %q", findings[0].Message)
		}
	})
}
