package algorithms

import (
	"gonum.org/v1/gonum/dsp/fourier"
)

// frequencyPlane is a complex 2-D array in row-major order. Transforms run at
// the native size: gonum's mixed-radix FFT handles any length, so no padding
// or cropping is involved.
type frequencyPlane struct {
	width  int
	height int
	data   []complex128
}

func newPlaneFromReal(samples []float64, width, height int) *frequencyPlane {
	p := &frequencyPlane{width: width, height: height, data: make([]complex128, len(samples))}
	for i, v := range samples {
		p.data[i] = complex(v, 0)
	}
	return p
}

// forward computes the unnormalized 2-D DFT in place.
func (p *frequencyPlane) forward(workers int) {
	p.transform(workers, false)
}

// inverse computes the inverse 2-D DFT in place, scaled by 1/(width*height).
func (p *frequencyPlane) inverse(workers int) {
	p.transform(workers, true)
	scale := complex(1/float64(p.width*p.height), 0)
	for i := range p.data {
		p.data[i] *= scale
	}
}

func (p *frequencyPlane) transform(workers int, inverse bool) {
	w, h := p.width, p.height

	// A length-1 DFT is the identity, so that pass is skipped.
	if w > 1 {
		p.transformRows(workers, inverse)
	}
	if h > 1 {
		p.transformColumns(workers, inverse)
	}
}

func (p *frequencyPlane) transformRows(workers int, inverse bool) {
	w, h := p.width, p.height
	forEachBand(h, workers, func(start, end int) {
		fft := fourier.NewCmplxFFT(w)
		in := make([]complex128, w)
		out := make([]complex128, w)
		for y := start; y < end; y++ {
			row := p.data[y*w : (y+1)*w]
			copy(in, row)
			apply1D(fft, out, in, inverse)
			copy(row, out)
		}
	})
}

func (p *frequencyPlane) transformColumns(workers int, inverse bool) {
	w, h := p.width, p.height
	forEachBand(w, workers, func(start, end int) {
		fft := fourier.NewCmplxFFT(h)
		in := make([]complex128, h)
		out := make([]complex128, h)
		for x := start; x < end; x++ {
			for y := 0; y < h; y++ {
				in[y] = p.data[y*w+x]
			}
			apply1D(fft, out, in, inverse)
			for y := 0; y < h; y++ {
				p.data[y*w+x] = out[y]
			}
		}
	})
}

func apply1D(fft *fourier.CmplxFFT, dst, src []complex128, inverse bool) {
	if inverse {
		fft.Sequence(dst, src)
		return
	}
	fft.Coefficients(dst, src)
}

// shifted moves the zero frequency to (width/2, height/2).
func (p *frequencyPlane) shifted() *frequencyPlane {
	return p.roll(p.width/2, p.height/2)
}

// unshifted undoes shifted, also for odd sizes.
func (p *frequencyPlane) unshifted() *frequencyPlane {
	return p.roll(p.width-p.width/2, p.height-p.height/2)
}

// roll circularly moves element (x, y) to ((x+dx)%w, (y+dy)%h).
func (p *frequencyPlane) roll(dx, dy int) *frequencyPlane {
	w, h := p.width, p.height
	out := &frequencyPlane{width: w, height: h, data: make([]complex128, len(p.data))}
	for y := 0; y < h; y++ {
		ty := (y + dy) % h
		for x := 0; x < w; x++ {
			out.data[ty*w+(x+dx)%w] = p.data[y*w+x]
		}
	}
	return out
}

// realPart returns the real component of every element.
func (p *frequencyPlane) realPart() []float64 {
	out := make([]float64, len(p.data))
	for i, v := range p.data {
		out[i] = real(v)
	}
	return out
}
