package addrmap

import "fmt"

func errBadCount(tok string) error {
	return fmt.Errorf("addrmap: non-numeric count in token %q", tok)
}

func errDimensionOverflow(name string) error {
	return fmt.Errorf("addrmap: dimension %q exceeds 32 bits", name)
}
