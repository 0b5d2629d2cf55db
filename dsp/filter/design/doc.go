// Package design provides digital IIR filter coefficient designers used by
// the signal conditioner.
//
// The functions in this package produce biquad coefficients consumable by
// dsp/filter/biquad. [Notch] and [Bandpass] are single RBJ-style sections;
// [ButterworthBandpass] returns a cascade obtained from the analog
// Butterworth prototype through the low-pass to band-pass transform and the
// bilinear transform with pre-warped band edges.
package design
