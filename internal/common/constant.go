package common

// AuthorizationHeaderName carries the session token as "Bearer <token>".
const AuthorizationHeaderName = "Authorization"

// DownloadPrefix is prepended to the original file name of a downloaded result.
const DownloadPrefix = "upscaled_"
