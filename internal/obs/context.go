package obs

import "context"

type routePatternKey struct{}

// WithRoutePattern stashes the matched chi route pattern so downstream
// middleware can label metrics and spans with the template, not the raw path.
func WithRoutePattern(ctx context.Context, pattern string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, routePatternKey{}, pattern)
}

// RoutePatternFromContext returns the stashed pattern, or "" when the request
// never matched a route.
func RoutePatternFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(routePatternKey{}).(string)
	return v
}
