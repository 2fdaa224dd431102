// Package operator implements dense complex-matrix algebra for multi-qubit
// density operators: tensor products, partial traces, unitary conjugation,
// and the fixed gates the merge protocols are built from.
//
// Qubit 0 is the leftmost tensor factor, i.e. the most significant bit of a
// computational-basis index. Operators are value-like: every operation
// returns a new instance and never mutates its receiver or arguments.
package operator

import (
	"fmt"
	"sort"
)

// Tolerance is the numerical tolerance used by the validation helpers.
const Tolerance = 1e-9

// Operator is a dense complex square matrix of dimension 2^n acting on n
// qubits, stored row-major.
type Operator struct {
	nQubits int
	dim     int
	data    []complex128
}

// New returns the zero operator on nQubits qubits.
func New(nQubits int) *Operator {
	dim := 1 << nQubits
	return &Operator{
		nQubits: nQubits,
		dim:     dim,
		data:    make([]complex128, dim*dim),
	}
}

// FromData builds an operator from a row-major matrix. The slice is copied.
func FromData(nQubits int, data []complex128) (*Operator, error) {
	dim := 1 << nQubits
	if len(data) != dim*dim {
		return nil, fmt.Errorf("%w: got %d elements, want %d for %d qubits",
			ErrDimensionMismatch, len(data), dim*dim, nQubits)
	}
	o := New(nQubits)
	copy(o.data, data)
	return o, nil
}

// Identity returns the identity operator on nQubits qubits.
func Identity(nQubits int) *Operator {
	o := New(nQubits)
	for i := 0; i < o.dim; i++ {
		o.data[i*o.dim+i] = 1
	}
	return o
}

// MaximallyMixed returns the fully depolarized state I / 2^n.
func MaximallyMixed(nQubits int) *Operator {
	return Identity(nQubits).Scale(complex(1/float64(int(1)<<nQubits), 0))
}

// NumQubits returns the number of qubits the operator acts on.
func (o *Operator) NumQubits() int { return o.nQubits }

// Dim returns the matrix dimension 2^n.
func (o *Operator) Dim() int { return o.dim }

// At returns element (i, j).
func (o *Operator) At(i, j int) complex128 { return o.data[i*o.dim+j] }

// Trace returns the sum of diagonal elements.
func (o *Operator) Trace() complex128 {
	var tr complex128
	for i := 0; i < o.dim; i++ {
		tr += o.data[i*o.dim+i]
	}
	return tr
}

// Scale returns c * o.
func (o *Operator) Scale(c complex128) *Operator {
	res := New(o.nQubits)
	for i, v := range o.data {
		res.data[i] = c * v
	}
	return res
}

// Add returns o + other.
func (o *Operator) Add(other *Operator) (*Operator, error) {
	if o.nQubits != other.nQubits {
		return nil, fmt.Errorf("%w: adding %d-qubit and %d-qubit operators",
			ErrDimensionMismatch, o.nQubits, other.nQubits)
	}
	res := New(o.nQubits)
	for i := range o.data {
		res.data[i] = o.data[i] + other.data[i]
	}
	return res, nil
}

// Sub returns o - other.
func (o *Operator) Sub(other *Operator) (*Operator, error) {
	if o.nQubits != other.nQubits {
		return nil, fmt.Errorf("%w: subtracting %d-qubit and %d-qubit operators",
			ErrDimensionMismatch, o.nQubits, other.nQubits)
	}
	res := New(o.nQubits)
	for i := range o.data {
		res.data[i] = o.data[i] - other.data[i]
	}
	return res, nil
}

// Mul returns the matrix product o * other.
func (o *Operator) Mul(other *Operator) (*Operator, error) {
	if o.nQubits != other.nQubits {
		return nil, fmt.Errorf("%w: multiplying %d-qubit and %d-qubit operators",
			ErrDimensionMismatch, o.nQubits, other.nQubits)
	}
	res := New(o.nQubits)
	d := o.dim
	for i := 0; i < d; i++ {
		for k := 0; k < d; k++ {
			a := o.data[i*d+k]
			if a == 0 {
				continue
			}
			for j := 0; j < d; j++ {
				res.data[i*d+j] += a * other.data[k*d+j]
			}
		}
	}
	return res, nil
}

// Adjoint returns the Hermitian conjugate (conjugate transpose).
func (o *Operator) Adjoint() *Operator {
	res := New(o.nQubits)
	d := o.dim
	for i := 0; i < d; i++ {
		for j := 0; j < d; j++ {
			v := o.data[j*d+i]
			res.data[i*d+j] = complex(real(v), -imag(v))
		}
	}
	return res
}

// Transform returns u * o * u†, the conjugation of o by the unitary u.
func (o *Operator) Transform(u *Operator) (*Operator, error) {
	left, err := u.Mul(o)
	if err != nil {
		return nil, err
	}
	return left.Mul(u.Adjoint())
}

// Tensor returns the Kronecker product of the operators in left-to-right
// qubit order. With no arguments it returns the scalar identity.
func Tensor(ops ...*Operator) *Operator {
	res := Identity(0)
	for _, op := range ops {
		res = kron(res, op)
	}
	return res
}

func kron(a, b *Operator) *Operator {
	res := New(a.nQubits + b.nQubits)
	da, db := a.dim, b.dim
	d := res.dim
	for ia := 0; ia < da; ia++ {
		for ja := 0; ja < da; ja++ {
			v := a.data[ia*da+ja]
			if v == 0 {
				continue
			}
			for ib := 0; ib < db; ib++ {
				for jb := 0; jb < db; jb++ {
					res.data[(ia*db+ib)*d+(ja*db+jb)] = v * b.data[ib*db+jb]
				}
			}
		}
	}
	return res
}

// EqualApprox reports whether both operators have the same qubit count and
// elementwise distance within tol.
func (o *Operator) EqualApprox(other *Operator, tol float64) bool {
	if o.nQubits != other.nQubits {
		return false
	}
	for i := range o.data {
		d := o.data[i] - other.data[i]
		if real(d) > tol || real(d) < -tol || imag(d) > tol || imag(d) < -tol {
			return false
		}
	}
	return true
}

// PartialTrace sums over the tensor factors not listed in keep, returning
// the reduced operator on the kept qubits, renumbered in increasing order
// of keep. Out-of-range or duplicate indices are rejected.
func (o *Operator) PartialTrace(keep []int) (*Operator, error) {
	if err := o.checkIndexSet(keep); err != nil {
		return nil, err
	}
	kept := append([]int(nil), keep...)
	sort.Ints(kept)

	traced := make([]int, 0, o.nQubits-len(kept))
	for q := 0; q < o.nQubits; q++ {
		if !containsInt(kept, q) {
			traced = append(traced, q)
		}
	}

	k, m := len(kept), len(traced)
	res := New(k)
	for a := 0; a < 1<<k; a++ {
		for b := 0; b < 1<<k; b++ {
			var sum complex128
			for e := 0; e < 1<<m; e++ {
				row := o.composeIndex(kept, a, traced, e)
				col := o.composeIndex(kept, b, traced, e)
				sum += o.data[row*o.dim+col]
			}
			res.data[a*res.dim+b] = sum
		}
	}
	return res, nil
}

// composeIndex scatters the bits of keptBits and tracedBits into a full
// basis index, with qubit q occupying bit position nQubits-1-q.
func (o *Operator) composeIndex(kept []int, keptBits int, traced []int, tracedBits int) int {
	idx := 0
	k, m := len(kept), len(traced)
	for i, q := range kept {
		bit := (keptBits >> (k - 1 - i)) & 1
		idx |= bit << (o.nQubits - 1 - q)
	}
	for i, q := range traced {
		bit := (tracedBits >> (m - 1 - i)) & 1
		idx |= bit << (o.nQubits - 1 - q)
	}
	return idx
}

// Permute reorders tensor factors so that output qubit i is input qubit
// order[i]. order must be a permutation of 0..n-1.
func (o *Operator) Permute(order []int) (*Operator, error) {
	if len(order) != o.nQubits || !isPermutation(order) {
		return nil, fmt.Errorf("%w: %v is not a permutation of 0..%d",
			ErrInvalidIndexSet, order, o.nQubits-1)
	}
	res := New(o.nQubits)
	n, d := o.nQubits, o.dim
	mapIndex := func(out int) int {
		in := 0
		for q := 0; q < n; q++ {
			bit := (out >> (n - 1 - q)) & 1
			in |= bit << (n - 1 - order[q])
		}
		return in
	}
	rows := make([]int, d)
	for r := 0; r < d; r++ {
		rows[r] = mapIndex(r)
	}
	for r := 0; r < d; r++ {
		for c := 0; c < d; c++ {
			res.data[r*d+c] = o.data[rows[r]*d+rows[c]]
		}
	}
	return res, nil
}

// Lift embeds gate at the given qubit offset of an nQubits register,
// tensoring identities on either side.
func Lift(gate *Operator, qubit, nQubits int) (*Operator, error) {
	if qubit < 0 || qubit+gate.nQubits > nQubits {
		return nil, fmt.Errorf("%w: gate on %d qubit(s) at offset %d does not fit in %d qubits",
			ErrInvalidIndexSet, gate.nQubits, qubit, nQubits)
	}
	return Tensor(Identity(qubit), gate, Identity(nQubits-qubit-gate.nQubits)), nil
}

func (o *Operator) checkIndexSet(indices []int) error {
	seen := make(map[int]bool, len(indices))
	for _, q := range indices {
		if q < 0 || q >= o.nQubits {
			return fmt.Errorf("%w: qubit %d out of range for %d-qubit operator",
				ErrInvalidIndexSet, q, o.nQubits)
		}
		if seen[q] {
			return fmt.Errorf("%w: duplicate qubit %d", ErrInvalidIndexSet, q)
		}
		seen[q] = true
	}
	return nil
}

func containsInt(sorted []int, v int) bool {
	i := sort.SearchInts(sorted, v)
	return i < len(sorted) && sorted[i] == v
}

func isPermutation(order []int) bool {
	seen := make([]bool, len(order))
	for _, v := range order {
		if v < 0 || v >= len(order) || seen[v] {
			return false
		}
		seen[v] = true
	}
	return true
}
