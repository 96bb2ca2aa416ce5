package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// DefaultTopic is used for browsing when no topic is selected.
const DefaultTopic = "cs.AI"
