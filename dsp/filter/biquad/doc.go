// Package biquad provides second-order IIR filter sections for conditioning
// biosignal windows.
//
// A [Section] implements Direct Form II Transposed processing for a single
// second-order section defined by [Coefficients]. Multiple sections can be
// cascaded via [Chain] for higher-order filters (Butterworth band-pass, notch
// plus band-pass, etc.).
//
// [FiltFilt] runs a cascade forward and backward over a finite window so that
// the net phase shift is zero. Windows are padded by odd reflection and each
// section starts from its steady-state delay line, so edge transients stay
// small even for short EEG windows.
//
// Coefficient design lives in dsp/filter/design.
package biquad
