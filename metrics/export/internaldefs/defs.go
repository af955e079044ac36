package internaldefs

import (
	"github.com/MrEthical07/authcore"
)

// CounterDef names one exported counter.
type CounterDef struct {
	ID   authcore.MetricID
	Name string
	Help string
}

// HistogramDef names one exported latency histogram.
type HistogramDef struct {
	ID   authcore.MetricID
	Name string
	Help string
}

// CounterDefs lists every engine counter in export order.
var CounterDefs = []CounterDef{
	{ID: authcore.MetricHashSuccess, Name: "authcore_hash_success_total", Help: "Credential references produced."},
	{ID: authcore.MetricHashFailure, Name: "authcore_hash_failure_total", Help: "Hash calls that failed."},
	{ID: authcore.MetricValidateOk, Name: "authcore_validate_ok_total", Help: "Credentials matched with the default scheme."},
	{ID: authcore.MetricValidateOutdated, Name: "authcore_validate_outdated_total", Help: "Credentials matched with an outdated scheme."},
	{ID: authcore.MetricValidateFailure, Name: "authcore_validate_failure_total", Help: "Credential validations that failed."},
	{ID: authcore.MetricTokenIssued, Name: "authcore_token_issued_total", Help: "Custom tokens issued."},
	{ID: authcore.MetricTokenValidated, Name: "authcore_token_validated_total", Help: "Custom tokens accepted."},
	{ID: authcore.MetricTokenExpired, Name: "authcore_token_expired_total", Help: "Custom tokens rejected as expired."},
	{ID: authcore.MetricTokenSignatureMismatch, Name: "authcore_token_signature_mismatch_total", Help: "Custom tokens rejected for a bad signature."},
	{ID: authcore.MetricTokenFailure, Name: "authcore_token_failure_total", Help: "Other custom token failures."},
	{ID: authcore.MetricJWTEncoded, Name: "authcore_jwt_encoded_total", Help: "Standard tokens signed."},
	{ID: authcore.MetricJWTDecoded, Name: "authcore_jwt_decoded_total", Help: "Standard tokens verified."},
	{ID: authcore.MetricJWTExpired, Name: "authcore_jwt_expired_total", Help: "Standard tokens rejected as expired."},
	{ID: authcore.MetricJWTFailure, Name: "authcore_jwt_failure_total", Help: "Other standard token failures."},
	{ID: authcore.MetricPoolRejected, Name: "authcore_pool_rejected_total", Help: "Hashing jobs refused by a saturated worker pool."},
}

// HistogramDefs lists the latency histograms.
var HistogramDefs = []HistogramDef{
	{ID: authcore.MetricHashLatency, Name: "authcore_hash_latency_seconds", Help: "Hash latency histogram."},
	{ID: authcore.MetricValidateLatency, Name: "authcore_validate_latency_seconds", Help: "Validate latency histogram."},
}

// HistogramBounds are the upper bounds in seconds of the first seven
// buckets. The eighth bucket is +Inf.
var HistogramBounds = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5}

// HistogramBoundSuffix is the instrument name suffix of each bucket.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets copies raw into a fixed eight-bucket array.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets turns per-bucket counts into running totals.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
