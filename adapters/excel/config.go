package excel

// ExcelConfig holds configuration for the file sample source
type ExcelConfig struct {
	FilePath string `json:"file_path"`
	// Sheet is the xlsx sheet to read; empty means the first sheet
	Sheet string `json:"sheet"`
	// IDColumns are the accepted headers for the sample id, in priority order
	IDColumns []string `json:"id_columns"`
}

// DefaultExcelConfig returns defaults for path
func DefaultExcelConfig(path string) ExcelConfig {
	return ExcelConfig{
		FilePath:  path,
		IDColumns: []string{"id", "sample_id", "sample"},
	}
}
