package constants

const (
	AppName      = "salonora"
	ConfigName   = "config"
	ConfigFormat = "yaml"
	EnvPrefix    = "SALONORA"

	// EventSubjectPrefix namespaces every subject published on NATS.
	EventSubjectPrefix = "salonora"
)
