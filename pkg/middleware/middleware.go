package middleware

type Transport struct {
	MetricsMiddleware   *MetricsMiddleware
	RequestIDMiddleware *RequestIDMiddleware
}
