package config

// GetDefaults returns the default configuration values.
func GetDefaults() map[string]interface{} {
	return map[string]interface{}{
		"db_path":                "~/.echeance/echeance.db",
		"rules_dir":              "",
		"case_insensitive_match": false,
		"log_level":              "warn",
		"log_format":             "text",
		"log_use_cases":          false,
	}
}
