package diffraction

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"

	"github.com/bob-anderson-ok/LunarOccultation/occult"
)

type ConvMode int

const (
	ConvSame ConvMode = iota
	ConvFull
	ConvValid
)

type PaddingMode int

const (
	PadZeros PaddingMode = iota
	PadReflect
	PadReplicate
	PadCircular
)

// Convolve1D convolves signal with kernel using a real FFT.
//
// signal: N samples
// kernel: M samples, odd length, centered on index M/2
// mode:   Same, Full, Valid
// pad:    how signal values beyond either end are synthesized; PadReplicate
//
//	extends the edge samples, which avoids an artificial intensity drop
//	at the grid boundaries.
//
// When normalize is set the kernel is divided by its sum first.
func Convolve1D(signal, kernel []float64, mode ConvMode, pad PaddingMode, normalize bool) ([]float64, error) {
	N := len(signal)
	M := len(kernel)
	if N == 0 || M == 0 {
		return nil, fmt.Errorf("empty signal or kernel: %w", occult.ErrInvalidParameter)
	}
	if M%2 == 0 {
		return nil, fmt.Errorf("kernel length %d must be odd: %w", M, occult.ErrInvalidParameter)
	}

	k := kernel
	if normalize {
		sum := floats.Sum(kernel)
		if sum == 0 {
			return nil, fmt.Errorf("kernel sums to zero: %w", occult.ErrNumericDegeneracy)
		}
		k = make([]float64, M)
		floats.ScaleTo(k, 1/sum, kernel)
	}

	// Embed the signal with M/2 synthesized samples on each side, then take the
	// full linear convolution of the padded signal.
	half := M / 2
	L := N + 2*half
	padded := make([]float64, L)
	for i := range padded {
		padded[i] = sample1D(signal, i-half, pad)
	}

	// Gonum works for any n, but pow2 is often faster.
	F := nextPow2(L + M - 1)
	A := make([]float64, F)
	B := make([]float64, F)
	copy(A, padded)
	copy(B, k)

	fft := fourier.NewFFT(F)
	ca := fft.Coefficients(nil, A)
	cb := fft.Coefficients(nil, B)
	for i := range ca {
		ca[i] *= cb[i]
	}
	full := fft.Sequence(nil, ca)

	// Gonum transforms are unnormalized: forward then inverse multiplies by F.
	floats.Scale(1/float64(F), full)

	// full[j] for j in [M-1, M-1+N) lines up with signal[j-M+1].
	switch mode {
	case ConvSame:
		out := make([]float64, N)
		copy(out, full[M-1:M-1+N])
		return out, nil

	case ConvFull:
		out := make([]float64, N+M-1)
		copy(out, full[half:half+N+M-1])
		return out, nil

	case ConvValid:
		if N < M {
			return nil, errors.New("valid convolution requested but kernel longer than signal")
		}
		out := make([]float64, N-M+1)
		copy(out, full[M-1+half:M-1+half+N-M+1])
		return out, nil
	}

	return nil, errors.New("unknown ConvMode")
}

func sample1D(s []float64, i int, mode PaddingMode) float64 {
	n := len(s)
	if 0 <= i && i < n {
		return s[i]
	}

	switch mode {
	case PadZeros:
		return 0

	case PadReplicate:
		return s[clamp(i, 0, n-1)]

	case PadReflect:
		return s[reflectIndex(i, n)]

	case PadCircular:
		return s[mod(i, n)]
	}

	return 0
}

// -------------------- utility --------------------

func nextPow2(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func mod(i, n int) int {
	r := i % n
	if r < 0 {
		r += n
	}
	return r
}

// reflectIndex implements "reflect" padding without repeating edge pixels.
// Example for n=5 indices: ... 2 1 0 1 2 3 4 3 2 1 0 1 ...
func reflectIndex(i, n int) int {
	if n <= 1 {
		return 0
	}
	period := 2*n - 2
	i = mod(i, period)
	if i >= n {
		i = period - i
	}
	return i
}
