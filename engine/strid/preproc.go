package strid

import (
	"fmt"
	"io"
	"strconv"
)

// Preprocess copies src to dst, replacing every ID("name") expression
// with the decimal identifier interned for name. Anything else passes
// through byte for byte. The expression must open and close on one
// line; a newline or EOF inside it is an error.
func Preprocess(db *DB, dst io.Writer, src []byte) error {
	const smallest = len(`ID("")`)

	for i := 0; i < len(src); i++ {
		remaining := len(src) - i

		if remaining >= smallest && src[i] == 'I' && src[i+1] == 'D' && src[i+2] == '(' && src[i+3] == '"' {
			j := i + 4
			for ; ; j++ {
				if j >= len(src)-1 {
					return fmt.Errorf(`EOF while scanning ID("...`)
				}
				if src[j] == '\n' {
					return fmt.Errorf(`newline while scanning ID("...`)
				}
				if src[j] == '"' {
					break
				}
			}
			name := string(src[i+4 : j])

			if src[j+1] != ')' {
				return fmt.Errorf(`malformed ID("...") expression, got ID("%s"%c...`, name, src[j+1])
			}

			if _, err := io.WriteString(dst, strconv.FormatUint(uint64(db.GetID(name)), 10)); err != nil {
				return err
			}
			i = j + 1
		} else {
			if _, err := dst.Write(src[i : i+1]); err != nil {
				return err
			}
		}
	}

	return nil
}
