package clients

import "time"

const (
	USER_AGENT         = "momentflow-client/1.0 (+https://github.com/spacesedan/momentflow)"
	DEFAULT_TIMEOUT    = 15 * time.Second
	MAX_ERROR_BODY     = 1024
	MAX_RESPONSE_BYTES = 10 << 20
)
