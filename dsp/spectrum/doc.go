// Package spectrum estimates and inspects power spectra of signal windows.
//
// [Welch] produces a one-sided power spectral density by averaging modified
// periodograms of overlapping, Hann-tapered, mean-removed segments. The FFT
// itself comes from algo-fft; this package owns framing, scaling and the
// helpers that read values back out of a PSD: band integration
// ([IntegrateBand]), masks ([BandMask]) and prominence-based peak picking
// ([FindPeaks]).
package spectrum
