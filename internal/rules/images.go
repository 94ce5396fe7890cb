package rules

import (
	"fmt"

	"github.com/nao1215/seoscan/internal/model"
)

// ImagesRule counts images without an alt attribute. An empty alt marks a
// decorative image and is accepted.
type ImagesRule struct{}

// NewImagesRule creates a new ImagesRule.
func NewImagesRule() *ImagesRule {
	return &ImagesRule{}
}

// Name returns the rule name.
func (r *ImagesRule) Name() string {
	return NameImages
}

// Evaluate implements Rule.
func (r *ImagesRule) Evaluate(in *Input) []model.Finding {
	missing := 0
	for _, img := range in.Document.SelectAll("img") {
		if _, ok := img.Attr("alt"); !ok {
			missing++
		}
	}
	if missing == 0 {
		return nil
	}
	return []model.Finding{{
		Rule:     "img-alt",
		Severity: model.SeverityError,
		Message:  fmt.Sprintf("%d %s missing alt attribute", missing, plural(missing, "image")),
		Fix:      `Add descriptive alt text to all <img> tags. Use alt="" for decorative images`,
	}}
}
