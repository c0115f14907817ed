package quant

import (
	"math"

	"github.com/jmylchreest/distil/internal/colour"
)

// Network learning parameters, after Anthony Dekker's NeuQuant (1994).
const (
	ncycles          = 100 // upper bound on learning cycles
	radiusDec        = 30  // bias radius shrinks by 1/30 each cycle
	radiusBiasShift  = 6
	radiusBias       = 1 << radiusBiasShift
	alphaBiasShift   = 10
	initAlpha        = 1 << alphaBiasShift
	gamma            = 1024.0
	beta             = 1.0 / gamma
	betaGamma        = beta * gamma
	maxChannelValue  = 255.0
	darkNeuronCutoff = 16
)

// Sampling steps coprime with most image sizes, so training walks the
// sample pseudo-randomly instead of row by row.
var primes = [4]int{499, 491, 487, 503}

type neuron struct {
	r, g, b, a float64
}

// NeuQuant implements the NeuQuant neural-net quantizer.
type NeuQuant struct{}

// NewNeuQuant creates a new NeuQuant quantizer.
func NewNeuQuant() *NeuQuant {
	return &NeuQuant{}
}

// Quantize trains a network of paletteSize neurons and returns its colours.
// Exactly paletteSize colours are returned; neurons that converged to the
// same colour produce repeated entries.
func (q *NeuQuant) Quantize(sample []byte, paletteSize, sampleStride int) ([]colour.RGB, error) {
	if err := validate(sample, paletteSize, sampleStride); err != nil {
		return nil, err
	}

	net := newNetwork(paletteSize)
	net.learn(sample, sampleStride)
	return net.palette(), nil
}

type network struct {
	neurons []neuron
	bias    []float64
	freq    []float64
}

func newNetwork(size int) *network {
	n := &network{
		neurons: make([]neuron, size),
		bias:    make([]float64, size),
		freq:    make([]float64, size),
	}
	for i := range size {
		v := float64(i) * 256.0 / float64(size)
		// Low neurons start translucent so they are reserved for dark pixels.
		a := maxChannelValue
		if i < darkNeuronCutoff {
			a = float64(i) * 16.0
		}
		n.neurons[i] = neuron{r: v, g: v, b: v, a: a}
		n.freq[i] = 1.0 / float64(size)
	}
	return n
}

func (n *network) learn(sample []byte, sampleFactor int) {
	size := len(n.neurons)
	lengthCount := len(sample) / BytesPerPixel
	samplePixels := lengthCount / sampleFactor

	alphaDec := 30 + (sampleFactor-1)/3
	biasRadius := (size / 8) * radiusBias
	rad := biasRadius >> radiusBiasShift
	if rad <= 1 {
		rad = 0
	}

	cycles := min(max(size>>1, 1), ncycles)
	delta := max(samplePixels/cycles, 1)

	step := primes[3]
	for _, p := range primes {
		if lengthCount%p != 0 {
			step = p
			break
		}
	}

	alpha := initAlpha
	pos := 0
	for i := 1; i <= samplePixels; i++ {
		px := sample[pos*BytesPerPixel : (pos+1)*BytesPerPixel]
		target := neuron{
			r: float64(px[0]),
			g: float64(px[1]),
			b: float64(px[2]),
			a: float64(px[3]),
		}

		j := n.contest(target)
		a := float64(alpha) / initAlpha
		n.alterSingle(a, j, target)
		if rad > 0 {
			n.alterNeighbours(a, rad, j, target)
		}

		pos += step
		for pos >= lengthCount {
			pos -= lengthCount
		}

		if i%delta == 0 {
			alpha -= alpha / alphaDec
			biasRadius -= biasRadius / radiusDec
			rad = biasRadius >> radiusBiasShift
			if rad <= 1 {
				rad = 0
			}
		}
	}
}

// contest finds the neuron closest to target, updating the frequency-based
// bias that stops a few neurons from winning every contest. It returns the
// best neuron after bias is applied.
func (n *network) contest(target neuron) int {
	bestDist := math.MaxFloat64
	bestBiasDist := bestDist
	bestPos := 0
	bestBiasPos := 0

	for i := range n.neurons {
		nr := &n.neurons[i]
		dist := math.Abs(nr.b-target.b) + math.Abs(nr.r-target.r)
		if dist < bestDist || dist < bestBiasDist+n.bias[i] {
			dist += math.Abs(nr.g-target.g) + math.Abs(nr.a-target.a)
			if dist < bestDist {
				bestDist = dist
				bestPos = i
			}
			if biasDist := dist - n.bias[i]; biasDist < bestBiasDist {
				bestBiasDist = biasDist
				bestBiasPos = i
			}
		}
		n.freq[i] -= beta * n.freq[i]
		n.bias[i] += betaGamma * n.freq[i]
	}

	n.freq[bestPos] += beta
	n.bias[bestPos] -= betaGamma
	return bestBiasPos
}

func (n *network) alterSingle(alpha float64, i int, target neuron) {
	n.neurons[i].move(alpha, target)
}

// alterNeighbours pulls the neurons within rad of i towards target with a
// strength that falls off quadratically with distance.
func (n *network) alterNeighbours(alpha float64, rad, i int, target neuron) {
	lo := max(i-rad, 0)
	hi := min(i+rad, len(n.neurons))
	radSq := float64(rad * rad)

	j, k, q := i+1, i-1, 0
	for j < hi || k > lo {
		a := alpha * (radSq - float64(q*q)) / radSq
		q++
		if j < hi {
			n.neurons[j].move(a, target)
			j++
		}
		if k > lo {
			n.neurons[k].move(a, target)
			k--
		}
	}
}

func (nr *neuron) move(alpha float64, target neuron) {
	nr.r -= alpha * (nr.r - target.r)
	nr.g -= alpha * (nr.g - target.g)
	nr.b -= alpha * (nr.b - target.b)
	nr.a -= alpha * (nr.a - target.a)
}

func (n *network) palette() []colour.RGB {
	out := make([]colour.RGB, len(n.neurons))
	for i, nr := range n.neurons {
		out[i] = colour.RGB{R: clampChannel(nr.r), G: clampChannel(nr.g), B: clampChannel(nr.b)}
	}
	return out
}

func clampChannel(v float64) uint8 {
	return uint8(math.Max(0, math.Min(maxChannelValue, math.Round(v))))
}
