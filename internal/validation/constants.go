package validation

const (
	// MoneyScale is the number of decimal places amounts may carry.
	MoneyScale = 2

	// Password requirements. bcrypt rejects anything past 72 bytes.
	MinPasswordLength = 8
	MaxPasswordLength = 72

	// String lengths
	MaxNameLength           = 100
	MaxTitleLength          = 150
	MaxDescriptionLength    = 5000
	MaxDestinationLength    = 64
	MaxTrackingNumberLength = 64
)
