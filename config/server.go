package config

// ServerConfig configures the HTTP report server.
type ServerConfig struct {
	Address        string   `json:"address" validate:"required"`
	AllowedOrigins []string `json:"allowed_origins"`
}

// SetDefaults applies sane defaults.
func (c *ServerConfig) SetDefaults() {
	if c.Address == "" {
		c.Address = ":8080"
	}
}

// ReportConfig configures the rendered report.
type ReportConfig struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	CSVFilename string `json:"csv_filename" validate:"required,endswith=.csv"`
}

// SetDefaults applies sane defaults.
func (c *ReportConfig) SetDefaults() {
	if c.Title == "" {
		c.Title = "Demand vs Supply Analysis"
	}
	if c.Description == "" {
		c.Description = "Passenger demand and seating capacity per route, with reallocation suggestions."
	}
	if c.CSVFilename == "" {
		c.CSVFilename = "route_analysis.csv"
	}
}
