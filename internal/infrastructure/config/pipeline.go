package config

// PipelineConfig holds dataset-pipeline orchestration configuration
type PipelineConfig struct {
	// Worker execution order. Workers are strictly serial.
	Workers []string `mapstructure:"workers"`

	// RunOnStart triggers one pipeline pass as soon as the daemon is up
	RunOnStart bool `mapstructure:"run_on_start"`

	// Retention: how many inactive datasets and graph versions to keep
	DatasetKeepCount int `mapstructure:"dataset_keep_count" validate:"min=0"`
	GraphKeepCount   int `mapstructure:"graph_keep_count" validate:"min=0"`
}
