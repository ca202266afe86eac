package util

import (
	"bufio"
	"errors"
	"fmt"
	"strings"
)

// error

type Error struct {
	orig error
	msg  string
	code error
}

func (e *Error) Error() string {
	if e.orig != nil {
		return fmt.Sprintf("%s", e.msg)
	}

	return e.msg
}

func (e *Error) Unwrap() error {
	return e.orig
}

func WrapErrorf(orig error, code error, format string, a ...interface{}) error {
	return &Error{
		code: code,
		orig: orig,
		msg:  fmt.Sprintf(format, a...),
	}
}

func (e *Error) Code() error {
	return e.code
}

var (
	ErrBadParamInput  = errors.New("given param is not valid")
	ErrNotPermutation = errors.New("order is not a permutation of the node ids")
	ErrLengthMismatch = errors.New("parallel arrays have mismatched lengths")
	ErrForeignMetric  = errors.New("metric was not built from this hierarchy")
	ErrQueryNotReady  = errors.New("query needs at least one source and one target")
	ErrNothingPinned  = errors.New("no pinned sources/targets")
)

func AssertPanic(cond bool, msg string) {
	if !cond {
		panic(msg)
	}
}

func Abs(a int) int {
	if a < 0 {
		return -a
	}
	return a
}

func MinInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// ReadLine reads one \n-terminated line without the terminator, tolerating
// lines longer than the reader buffer.
func ReadLine(br *bufio.Reader) (string, error) {
	var sb strings.Builder
	for {
		chunk, isPrefix, err := br.ReadLine()
		if err != nil {
			return "", err
		}
		sb.Write(chunk)
		if !isPrefix {
			return sb.String(), nil
		}
	}
}

func ReverseG[T any](arr []T) []T {
	copyArr := make([]T, len(arr))
	copy(copyArr, arr)
	for i, j := 0, len(copyArr)-1; i < j; i, j = i+1, j-1 {
		copyArr[i], copyArr[j] = copyArr[j], copyArr[i]
	}
	return copyArr
}
