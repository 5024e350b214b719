package security

// Scored variant of the sanitizer used for monitoring and alerting. It never
// blocks; callers decide what a given risk score means.
type InjectionDetector struct{}

func NewInjectionDetector() *InjectionDetector {
	return &InjectionDetector{}
}

// Walks the shared signature table and sums the score of every match in the
// scored categories. Block-only categories contribute nothing here.
func (d *InjectionDetector) Analyze(text string) (int, []string) {
	riskScore := 0
	var issues []string

	for _, category := range injectionCategories {
		if category.Score == 0 {
			continue
		}

		for _, pattern := range category.Patterns {
			if pattern.MatchString(text) {
				riskScore += category.Score
				issues = append(issues, category.Issue)
			}
		}
	}

	return riskScore, issues
}
