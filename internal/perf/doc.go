// Package perf turns raw browser timing samples into rated Core Web Vitals
// style metrics, a weighted performance score, and score-affecting findings.
//
// Sampling itself sits behind the Sampler interface. RodSampler drives a
// headless Chromium through go-rod: it installs PerformanceObservers before
// navigation, waits for the network to go idle plus a settle delay, then
// reads the observed values and the navigation timing entry.
package perf
