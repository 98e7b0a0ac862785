package config

// DefaultConfig returns the configuration used when no config file exists.
func DefaultConfig() *Config {
	return &Config{
		Scan: ScanConfig{
			Exclude: []string{
				"*_test.c",
				"build",
				"vendor",
			},
		},
		Outputs: OutputsConfig{
			Declarations: "declarations.jsonl",
			Enums:        "enums.jsonl",
			Relations:    "relations.jsonl",
		},
	}
}
