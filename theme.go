package ragchat

// Theme defines semantic color mappings using ANSI color indices (0-15).
// The user's terminal theme determines the actual RGB values.
type Theme struct {
	UserMsg int // User message accent
	Error   int // Error messages and failed exchanges
	Success int // Stored-key indicator
	Muted   int // Status bar, placeholders, code gutters
	CodeBg  int // Code block background
	Accent  int // Headings, links, spinner
}

// DefaultTheme returns the default ANSI color mapping.
func DefaultTheme() Theme {
	return Theme{
		UserMsg: 4,
		Error:   1,
		Success: 2,
		Muted:   8,
		CodeBg:  0,
		Accent:  5,
	}
}
