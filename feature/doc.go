// Package feature turns a conditioned sample window into a fixed set of
// spectral features.
//
// The [Extractor] estimates the power spectral density with Welch's method and
// derives, for each of the five EEG [Band]s, the absolute power (trapezoidal
// PSD integral), the power relative to the time-domain variance, the dominant
// peak frequency and amplitude, and a band SNR. Band ratios and spectral shape
// descriptors complete the [Vector].
//
// A Vector is a plain struct with compile-time band and field names; the
// string keys (alpha_power, theta_relative, ...) exist only at the
// serialization and statistics boundary through [Names], [Vector.Values] and
// [Vector.Get].
package feature
