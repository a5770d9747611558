package params

import "time"

const (
	ServerBodyLimit    = 10 * 1024 * 1024 // 10 MiB, large enough for identity document uploads
	ServerIdleTimeout  = 30 * time.Second
	ServerReadTimeout  = 10 * time.Second
	ServerWriteTimeout = 10 * time.Second

	PendingRegistrationKeyPrefix = "p:"
	OTPAttemptsKeyPrefix         = "a:"

	OTPCodeLength                 = 6
	PendingRegistrationExpiration = 10 * time.Minute // pending registration time to live
	OTPMaxVerifyAttempts          = 5                // failed code submissions allowed per pending entry

	AccessTokenExpiration = 1 * time.Hour // jwt access token lifetime

	HealthCheckServerAddr = ":3001" // health check server address
)
