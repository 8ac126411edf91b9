package duplicates

import (
	"github.com/YuminosukeSato/synthcheck/frame"
	"github.com/YuminosukeSato/synthcheck/pkg/errors"
)

// CopyIndices returns, in index order, the fake rows equal to some real row.
// Matching is by value, not by position.
func CopyIndices(real, fake *frame.Frame) ([]int, error) {
	if err := sameColumns(real, fake); err != nil {
		return nil, err
	}
	index := make(map[uint64][]int, real.NRows())
	for i, h := range Hashes(real) {
		index[h] = append(index[h], i)
	}

	var out []int
	for i, h := range Hashes(fake) {
		candidates, ok := index[h]
		if !ok {
			continue
		}
		row := fake.Row(i)
		for _, j := range candidates {
			if sameRow(row, real.Row(j)) {
				out = append(out, i)
				break
			}
		}
	}
	return out, nil
}

// Copies returns the fake rows that also occur in real.
func Copies(real, fake *frame.Frame) (*frame.Frame, error) {
	idx, err := CopyIndices(real, fake)
	if err != nil {
		return nil, err
	}
	return fake.Take(idx), nil
}

// CountCopies returns the number of fake rows that also occur in real.
func CountCopies(real, fake *frame.Frame) (int, error) {
	idx, err := CopyIndices(real, fake)
	return len(idx), err
}

// DuplicateIndices returns every row of f (all occurrences, index order)
// whose values occur more than once in f.
func DuplicateIndices(f *frame.Frame) []int {
	groups := make(map[uint64][]int, f.NRows())
	hashes := Hashes(f)
	for i, h := range hashes {
		groups[h] = append(groups[h], i)
	}

	var out []int
	for i, h := range hashes {
		group := groups[h]
		if len(group) < 2 {
			continue
		}
		row := f.Row(i)
		for _, j := range group {
			if j != i && sameRow(row, f.Row(j)) {
				out = append(out, i)
				break
			}
		}
	}
	return out
}

// Duplicates returns the duplicated rows of real and of fake, each judged
// within its own dataset.
func Duplicates(real, fake *frame.Frame) (realDup, fakeDup *frame.Frame) {
	return real.Take(DuplicateIndices(real)), fake.Take(DuplicateIndices(fake))
}

// CountDuplicates returns the number of duplicated rows in real and in fake.
func CountDuplicates(real, fake *frame.Frame) (realCount, fakeCount int) {
	return len(DuplicateIndices(real)), len(DuplicateIndices(fake))
}

func sameColumns(real, fake *frame.Frame) error {
	rn, fn := real.Names(), fake.Names()
	if len(rn) != len(fn) {
		return errors.NewDimensionError("duplicates.Copies", len(rn), len(fn), 1)
	}
	for i := range rn {
		if rn[i] != fn[i] {
			return errors.NewSchemaMismatchErrorf("column %d is %q in real and %q in fake", i, rn[i], fn[i])
		}
	}
	return nil
}
