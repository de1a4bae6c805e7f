package config

import "testing"

func TestLoad(t *testing.T) {
	cfg := Load()

	if cfg.MaxElementDepth <= 0 {
		t.Error("expected MaxElementDepth to be positive")
	}
	if cfg.MaxElementSize <= 0 {
		t.Error("expected MaxElementSize to be positive")
	}
	if !cfg.VerifyChecksums {
		t.Error("expected VerifyChecksums to default to true")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Options
		wantErr bool
	}{
		{
			name: "valid config",
			config: Options{
				MaxElementDepth: 64,
				MaxElementSize:  1 << 20,
				PaddingReserve:  1024,
				LogLevel:        "info",
				LogFormat:       "text",
			},
			wantErr: false,
		},
		{
			name: "zero depth",
			config: Options{
				MaxElementDepth: 0,
				MaxElementSize:  1 << 20,
				LogLevel:        "info",
				LogFormat:       "text",
			},
			wantErr: true,
		},
		{
			name: "negative padding reserve",
			config: Options{
				MaxElementDepth: 64,
				MaxElementSize:  1 << 20,
				PaddingReserve:  -1,
				LogLevel:        "info",
				LogFormat:       "text",
			},
			wantErr: true,
		},
		{
			name: "invalid log level",
			config: Options{
				MaxElementDepth: 64,
				MaxElementSize:  1 << 20,
				LogLevel:        "verbose",
				LogFormat:       "text",
			},
			wantErr: true,
		},
		{
			name: "invalid log format",
			config: Options{
				MaxElementDepth: 64,
				MaxElementSize:  1 << 20,
				LogLevel:        "info",
				LogFormat:       "xml",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
