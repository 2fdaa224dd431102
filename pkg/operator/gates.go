package operator

import (
	"fmt"
	"math"
)

func mustFromData(nQubits int, data []complex128) *Operator {
	o, err := FromData(nQubits, data)
	if err != nil {
		panic(err)
	}
	return o
}

// PauliX returns the single-qubit bit-flip gate.
func PauliX() *Operator {
	return mustFromData(1, []complex128{
		0, 1,
		1, 0,
	})
}

// PauliY returns the single-qubit Y gate.
func PauliY() *Operator {
	return mustFromData(1, []complex128{
		0, complex(0, -1),
		complex(0, 1), 0,
	})
}

// PauliZ returns the single-qubit phase-flip gate.
func PauliZ() *Operator {
	return mustFromData(1, []complex128{
		1, 0,
		0, -1,
	})
}

// Hadamard returns the single-qubit Hadamard gate.
func Hadamard() *Operator {
	h := complex(1/math.Sqrt2, 0)
	return mustFromData(1, []complex128{
		h, h,
		h, -h,
	})
}

// CNOT returns the two-qubit controlled-NOT with the control on the first
// tensor factor.
func CNOT() *Operator {
	return mustFromData(2, []complex128{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 0, 1,
		0, 0, 1, 0,
	})
}

// Swap returns the two-qubit SWAP gate.
func Swap() *Operator {
	return mustFromData(2, []complex128{
		1, 0, 0, 0,
		0, 0, 1, 0,
		0, 1, 0, 0,
		0, 0, 0, 1,
	})
}

// ControlledNot returns the full 2^n controlled-NOT unitary with arbitrary
// control and target wires, so gates between non-adjacent qubits need no
// swap chains.
func ControlledNot(control, target, nQubits int) (*Operator, error) {
	if control < 0 || control >= nQubits || target < 0 || target >= nQubits {
		return nil, fmt.Errorf("%w: control %d, target %d on %d qubits",
			ErrInvalidIndexSet, control, target, nQubits)
	}
	if control == target {
		return nil, fmt.Errorf("%w: control and target are both qubit %d",
			ErrInvalidIndexSet, control)
	}
	u := New(nQubits)
	ctrlBit := nQubits - 1 - control
	tgtBit := nQubits - 1 - target
	for b := 0; b < u.dim; b++ {
		out := b
		if (b>>ctrlBit)&1 == 1 {
			out = b ^ (1 << tgtBit)
		}
		u.data[out*u.dim+b] = 1
	}
	return u, nil
}
