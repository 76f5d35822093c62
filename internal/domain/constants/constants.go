// Package constants collects configuration values shared across packages.
package constants

// Deployment environments
const (
	EnvDevelop = "develop"
)

// Mail delivery providers
const (
	MailProviderLog      = "log"
	MailProviderSendGrid = "sendgrid"
	MailProviderPubSub   = "pubsub"
	MailProviderLocal    = "local"
)

// Media host providers
const (
	MediaProviderBlob = "blob"
	MediaProviderS3   = "s3"
)
