package main

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/platform/config"
	"github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/platform/secrets"
)

// newSecretFetcher is built from raw environment values because config.Load needs the fetcher to
// resolve secret:// references.
func newSecretFetcher(ctx context.Context, logger *zap.Logger, env map[string]string) (*secrets.Fetcher, error) {
	get := func(key string) string { return strings.TrimSpace(env[key]) }

	opts := []secrets.Option{
		secrets.WithLogger(logger),
		secrets.WithEnvironment(firstNonEmpty(get("API_ENVIRONMENT"), "local")),
		secrets.WithFallbackFile(firstNonEmpty(get("API_SECRET_FALLBACK_FILE"), ".secrets.local")),
	}
	if project := firstNonEmpty(get("API_SECRET_DEFAULT_PROJECT_ID"), get("API_FIRESTORE_PROJECT_ID")); project != "" {
		opts = append(opts, secrets.WithDefaultProject(project))
	}
	if projects := splitPairs(get("API_SECRET_PROJECT_IDS")); len(projects) > 0 {
		byEnv := make(map[string]string, len(projects))
		for name, project := range projects {
			byEnv[strings.ToLower(name)] = project
		}
		opts = append(opts, secrets.WithProjectMap(byEnv))
	}
	if pins := versionPins(get("API_SECRET_VERSION_PINS")); len(pins) > 0 {
		opts = append(opts, secrets.WithVersionPins(pins))
	}
	if file := get("API_GOOGLE_CREDENTIALS_FILE"); file != "" {
		opts = append(opts, secrets.WithClientOptions(option.WithCredentialsFile(file)))
	}
	return secrets.NewFetcher(ctx, opts...)
}

// requiredSecretNames lists config fields that must resolve for the backends selected in env.
func requiredSecretNames(env map[string]string) []string {
	set := func(key string) bool { return strings.TrimSpace(env[key]) != "" }

	var names []string
	if set("API_ORDER_API_API_KEY") {
		names = append(names, "OrderAPI.APIKey")
	}
	if strings.EqualFold(strings.TrimSpace(env["API_CHECKOUT_COUPON_SOURCE"]), config.BackendRemote) {
		names = append(names, "CouponStore.APIKey")
	}
	if set("API_REDIS_PASSWORD") {
		names = append(names, "Redis.Password")
	}
	return names
}

// versionPins parses "[env:]name=version" pairs. Bare names and sm:// references become
// secret:// references; the env prefix is lower-cased.
func versionPins(raw string) map[string]string {
	pins := make(map[string]string)
	for ref, version := range splitPairs(raw) {
		prefix := ""
		if env, rest, ok := strings.Cut(ref, ":"); ok && !strings.HasPrefix(rest, "//") {
			prefix = strings.ToLower(strings.TrimSpace(env)) + ":"
			ref = strings.TrimSpace(rest)
		}
		if rest, ok := strings.CutPrefix(ref, "sm://"); ok {
			ref = "secret://" + rest
		} else if !strings.HasPrefix(ref, "secret://") {
			ref = "secret://" + ref
		}
		pins[prefix+ref] = version
	}
	return pins
}

// splitPairs parses comma separated key=value pairs, skipping blank keys or values.
func splitPairs(raw string) map[string]string {
	out := make(map[string]string)
	for _, entry := range strings.Split(raw, ",") {
		key, value, ok := strings.Cut(entry, "=")
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)
		if ok && key != "" && value != "" {
			out[key] = value
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
