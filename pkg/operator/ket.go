package operator

import (
	"fmt"
	"math"
)

// Ket is a pure n-qubit state vector. Like Operator it is immutable.
type Ket struct {
	nQubits int
	data    []complex128
}

// Basis returns the computational-basis ket |index⟩ on nQubits qubits.
func Basis(nQubits, index int) (*Ket, error) {
	dim := 1 << nQubits
	if index < 0 || index >= dim {
		return nil, fmt.Errorf("%w: basis index %d out of range for %d qubits",
			ErrInvalidIndexSet, index, nQubits)
	}
	data := make([]complex128, dim)
	data[index] = 1
	return &Ket{nQubits: nQubits, data: data}, nil
}

// Plus returns the single-qubit |+⟩ = (|0⟩+|1⟩)/√2 state.
func Plus() *Ket {
	h := complex(1/math.Sqrt2, 0)
	return &Ket{nQubits: 1, data: []complex128{h, h}}
}

// NumQubits returns the number of qubits in the ket's support.
func (k *Ket) NumQubits() int { return k.nQubits }

// Dim returns the vector dimension 2^n.
func (k *Ket) Dim() int { return len(k.data) }

// At returns amplitude i.
func (k *Ket) At(i int) complex128 { return k.data[i] }

// Add returns k + other.
func (k *Ket) Add(other *Ket) (*Ket, error) {
	if k.nQubits != other.nQubits {
		return nil, fmt.Errorf("%w: adding %d-qubit and %d-qubit kets",
			ErrDimensionMismatch, k.nQubits, other.nQubits)
	}
	data := make([]complex128, len(k.data))
	for i := range data {
		data[i] = k.data[i] + other.data[i]
	}
	return &Ket{nQubits: k.nQubits, data: data}, nil
}

// Scale returns c * k.
func (k *Ket) Scale(c complex128) *Ket {
	data := make([]complex128, len(k.data))
	for i, v := range k.data {
		data[i] = c * v
	}
	return &Ket{nQubits: k.nQubits, data: data}
}

// Outer returns the projector |k⟩⟨k|.
func (k *Ket) Outer() *Operator {
	o := New(k.nQubits)
	d := o.dim
	for i := 0; i < d; i++ {
		if k.data[i] == 0 {
			continue
		}
		for j := 0; j < d; j++ {
			o.data[i*d+j] = k.data[i] * complex(real(k.data[j]), -imag(k.data[j]))
		}
	}
	return o
}

// PureStateFidelity returns ⟨ψ|ρ|ψ⟩, the fidelity of the density operator
// rho with the pure target state psi.
func PureStateFidelity(rho *Operator, psi *Ket) (float64, error) {
	if rho.nQubits != psi.nQubits {
		return 0, fmt.Errorf("%w: %d-qubit operator against %d-qubit ket",
			ErrDimensionMismatch, rho.nQubits, psi.nQubits)
	}
	var f complex128
	d := rho.dim
	for i := 0; i < d; i++ {
		ci := complex(real(psi.data[i]), -imag(psi.data[i]))
		for j := 0; j < d; j++ {
			f += ci * rho.data[i*d+j] * psi.data[j]
		}
	}
	return real(f), nil
}
