package questiongen

// Config controls the behavior of the LLMGenerator.
type Config struct {
	// Validators run in order on every generated question; the first
	// failure stops the pipeline.
	Validators []Validator

	MaxTokens   int
	Temperature float64

	// TopicTemperature is used for topic suggestions.
	TopicTemperature float64

	// MaxRecentErrors caps the mistakes included in the prompt.
	MaxRecentErrors int
}

// DefaultConfig returns a Config with the standard validator chain.
func DefaultConfig() Config {
	return Config{
		Validators: []Validator{
			&StructuralValidator{},
			&OptionsValidator{},
		},
		MaxTokens:        800,
		Temperature:      0.7,
		TopicTemperature: 0.5,
		MaxRecentErrors:  3,
	}
}
