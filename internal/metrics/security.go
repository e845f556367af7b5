package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// SecurityMetrics records isolation and credential events that must be
// alertable: degraded (in-memory only) registrations, decrypt failures on
// stored secrets, and denied scope requests. These are counted separately
// from ordinary business operations so operators can page on them directly.
type SecurityMetrics interface {
	// RecordDegradedRegistration counts a registration that stayed in-memory
	// because the persistence write failed.
	RecordDegradedRegistration(ctx context.Context, appID string)

	// RecordDecryptFailure counts a stored secret record that failed to decrypt.
	RecordDecryptFailure(ctx context.Context, appID string)

	// RecordScopeDenial counts a rejected scope request.
	RecordScopeDenial(ctx context.Context, appID, scope string)
}

// securityMetrics implements SecurityMetrics using OpenTelemetry metrics.
type securityMetrics struct {
	degradedCounter metric.Int64Counter
	decryptCounter  metric.Int64Counter
	denialCounter   metric.Int64Counter
}

// NewSecurityMetrics creates a new SecurityMetrics implementation using the provided meter provider.
func NewSecurityMetrics(meterProvider metric.MeterProvider, namespace string) (SecurityMetrics, error) {
	meter := meterProvider.Meter(namespace)

	degradedCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_degraded_registrations_total", namespace),
		metric.WithDescription("Registrations kept in-memory only after a persistence failure"),
		metric.WithUnit("{registration}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create degraded registration counter: %w", err)
	}

	decryptCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_secret_decrypt_failures_total", namespace),
		metric.WithDescription("Stored app secret records that failed to decrypt"),
		metric.WithUnit("{failure}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create decrypt failure counter: %w", err)
	}

	denialCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_scope_denials_total", namespace),
		metric.WithDescription("Requested scopes rejected by the access policy"),
		metric.WithUnit("{denial}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create scope denial counter: %w", err)
	}

	return &securityMetrics{
		degradedCounter: degradedCounter,
		decryptCounter:  decryptCounter,
		denialCounter:   denialCounter,
	}, nil
}

// RecordDegradedRegistration increments the degraded registration counter.
func (s *securityMetrics) RecordDegradedRegistration(ctx context.Context, appID string) {
	s.degradedCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("app_id", appID)))
}

// RecordDecryptFailure increments the decrypt failure counter.
func (s *securityMetrics) RecordDecryptFailure(ctx context.Context, appID string) {
	s.decryptCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("app_id", appID)))
}

// RecordScopeDenial increments the scope denial counter.
func (s *securityMetrics) RecordScopeDenial(ctx context.Context, appID, scope string) {
	s.denialCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("app_id", appID),
			attribute.String("scope", scope),
		),
	)
}

// NoOpSecurityMetrics is a no-op implementation of SecurityMetrics for when metrics are disabled.
type NoOpSecurityMetrics struct{}

// NewNoOpSecurityMetrics creates a no-op SecurityMetrics implementation.
func NewNoOpSecurityMetrics() SecurityMetrics {
	return &NoOpSecurityMetrics{}
}

// RecordDegradedRegistration does nothing when metrics are disabled.
func (n *NoOpSecurityMetrics) RecordDegradedRegistration(ctx context.Context, appID string) {
	// No-op
}

// RecordDecryptFailure does nothing when metrics are disabled.
func (n *NoOpSecurityMetrics) RecordDecryptFailure(ctx context.Context, appID string) {
	// No-op
}

// RecordScopeDenial does nothing when metrics are disabled.
func (n *NoOpSecurityMetrics) RecordScopeDenial(ctx context.Context, appID, scope string) {
	// No-op
}
