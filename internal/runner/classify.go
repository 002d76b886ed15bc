package runner

import (
	"regexp"
	"strconv"
	"strings"
)

// ErrorKind is the coarse transient/permanent/unknown/timeout/none taxonomy.
type ErrorKind string

const (
	KindNone      ErrorKind = "none"
	KindTimeout   ErrorKind = "timeout"
	KindTransient ErrorKind = "transient"
	KindPermanent ErrorKind = "permanent"
	KindUnknown   ErrorKind = "unknown"
)

// ErrorSubtype further classifies transient/permanent errors.
type ErrorSubtype string

const (
	SubtypeNone            ErrorSubtype = "none"
	SubtypeTimeout         ErrorSubtype = "timeout"
	SubtypeAuthOrQuota     ErrorSubtype = "auth_or_quota"
	SubtypeRateLimit       ErrorSubtype = "rate_limit"
	SubtypeServer5xx       ErrorSubtype = "server_5xx"
	SubtypeNetwork         ErrorSubtype = "network"
	SubtypeProviderGeneric ErrorSubtype = "provider_generic"
	SubtypeClient4xx       ErrorSubtype = "client_4xx"
	SubtypeUnknown         ErrorSubtype = "unknown"
)

// Classification is the result of classifying a child process's outcome.
type Classification struct {
	Kind       ErrorKind
	Subtype    ErrorSubtype
	RetryAfter int // seconds; 0 if not specified
}

var (
	authOrQuotaRe = regexp.MustCompile(`(?i)incorrect_api_key|invalid_api_key|exceeded.{0,10}quota|insufficient.quota|insufficient.credits|payment.required|quota.exceeded|credits.(depleted|exhausted)|no.cookie.auth|no credentials found|authentication failed|unauthorized|missing authentication header|http.?[:\s]?401\b`)
	rateLimitRe   = regexp.MustCompile(`(?i)rate.limit|too many requests|retry-after|http.?[:\s]?429\b`)
	server5xxRe   = regexp.MustCompile(`(?i)http.?[:\s]?5\d\d\b|service.unavailable|temporarily.unavailable`)
	networkRe     = regexp.MustCompile(`(?i)network error|timed out|connection reset|connection refused|connection aborted|tls handshake timeout|econnreset|econnrefused|enotfound|broken pipe`)
	providerRe    = regexp.MustCompile(`(?i)provider returned error|provider.error|upstream.error|model.error`)
	client4xxRe   = regexp.MustCompile(`(?i)http.?[:\s]?4\d\d\b`)
	retryAfterRe  = regexp.MustCompile(`(?i)retry[-_ ]after["\s]*[:=][ ]*(\d+)`)
)

// ClassifyRuntimeError classifies a child process's combined stdout+stderr
// and exit code into a transient/permanent/timeout/unknown taxonomy.
//
// Grounded in runtime_facade.py's classify_runtime_error: priority order is
// auth_or_quota, rate_limit, server_5xx, network, provider_generic,
// client_4xx (excluding 429), else unknown.
func ClassifyRuntimeError(stdout, stderr string, exitCode int) Classification {
	if exitCode == 0 {
		if strings.TrimSpace(stdout) == "" {
			// Exit 0 with no output at all is retried like a transient error.
			return Classification{Kind: KindTransient, Subtype: SubtypeUnknown}
		}
		return Classification{Kind: KindNone, Subtype: SubtypeNone}
	}
	if exitCode == 124 {
		return Classification{Kind: KindTimeout, Subtype: SubtypeTimeout}
	}

	combined := strings.ToLower(stdout + "\n" + stderr)

	switch {
	case authOrQuotaRe.MatchString(combined):
		return Classification{Kind: KindPermanent, Subtype: SubtypeAuthOrQuota}
	case rateLimitRe.MatchString(combined):
		return Classification{Kind: KindTransient, Subtype: SubtypeRateLimit, RetryAfter: extractRetryAfter(combined)}
	case server5xxRe.MatchString(combined):
		return Classification{Kind: KindTransient, Subtype: SubtypeServer5xx}
	case networkRe.MatchString(combined):
		return Classification{Kind: KindTransient, Subtype: SubtypeNetwork}
	case providerRe.MatchString(combined):
		return Classification{Kind: KindTransient, Subtype: SubtypeProviderGeneric}
	case client4xxRe.MatchString(combined):
		return Classification{Kind: KindPermanent, Subtype: SubtypeClient4xx}
	default:
		return Classification{Kind: KindUnknown, Subtype: SubtypeUnknown}
	}
}

func extractRetryAfter(text string) int {
	m := retryAfterRe.FindStringSubmatch(text)
	if len(m) != 2 {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

// ClassifyAPIErrorText further sub-classifies auth_or_quota text into the
// specific title the parser surfaces on the PR comment banner, grounded in
// run-reviewer.py's classify_api_error_text.
func ClassifyAPIErrorText(text string) string {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "invalid_api_key") || strings.Contains(lower, "incorrect_api_key") || strings.Contains(lower, "unauthorized") || strings.Contains(lower, "http 401") || strings.Contains(lower, "http: 401"):
		return "API_KEY_INVALID"
	case strings.Contains(lower, "credits") || strings.Contains(lower, "quota") || strings.Contains(lower, "payment required"):
		return "API_CREDITS_DEPLETED"
	default:
		return "API_ERROR"
	}
}

var (
	bearerRe = regexp.MustCompile(`(?i)Bearer\s+[A-Za-z0-9\-._~+/]+=*`)
	apiKeyRe = regexp.MustCompile(`(?i)(api[_-]?key\s*[:=]\s*)([^\s"']+)`)
	tokenRe  = regexp.MustCompile(`(?i)(token\s*[:=]\s*)([^\s"']+)`)
)

// RedactSecrets strips bearer tokens and key=value secrets from text before
// it is surfaced in a log line or PR comment.
func RedactSecrets(text string) string {
	text = bearerRe.ReplaceAllString(text, "Bearer [REDACTED]")
	text = apiKeyRe.ReplaceAllString(text, "${1}[REDACTED]")
	text = tokenRe.ReplaceAllString(text, "${1}[REDACTED]")
	return text
}
