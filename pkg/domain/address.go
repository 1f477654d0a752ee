package domain

import (
	"encoding/binary"
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/sha3"

	dErrors "ans/pkg/domain-errors"
)

// AddressLength is the size of an address in bytes.
const AddressLength = 20

// Address identifies an account or a deployed component. The zero value is the
// sentinel "no address" and is never a valid owner or binding target.
type Address [AddressLength]byte

// ZeroAddress is the sentinel address.
var ZeroAddress = Address{}

// ParseAddress parses a 0x-prefixed, 40 hex digit address in any letter case.
// The zero address parses successfully; callers that need a real identity
// check IsZero.
func ParseAddress(s string) (Address, error) {
	var a Address
	hexPart, ok := strings.CutPrefix(s, "0x")
	if !ok {
		hexPart, ok = strings.CutPrefix(s, "0X")
	}
	if !ok || len(hexPart) != 2*AddressLength {
		return a, dErrors.New(dErrors.CodeInvalidAddress, "address must be 0x followed by 40 hex digits")
	}
	if _, err := hex.Decode(a[:], []byte(hexPart)); err != nil {
		return Address{}, dErrors.New(dErrors.CodeInvalidAddress, "address contains non-hex characters")
	}
	return a, nil
}

// MustParseAddress is ParseAddress for constants and tests.
func MustParseAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

// BytesToAddress uses the last 20 bytes of b, left-padding shorter input.
func BytesToAddress(b []byte) Address {
	var a Address
	if len(b) > AddressLength {
		b = b[len(b)-AddressLength:]
	}
	copy(a[AddressLength-len(b):], b)
	return a
}

// DeriveAddress computes a component address from its deployer and the
// deployer's deployment counter, CREATE-style: keccak256(deployer || nonce)[12:].
func DeriveAddress(deployer Address, nonce uint64) Address {
	var buf [AddressLength + 8]byte
	copy(buf[:], deployer[:])
	binary.BigEndian.PutUint64(buf[AddressLength:], nonce)
	return BytesToAddress(keccak256(buf[:]))
}

// IsZero reports whether a is the sentinel address.
func (a Address) IsZero() bool {
	return a == ZeroAddress
}

// Hex renders the address with the EIP-55 mixed-case checksum.
func (a Address) Hex() string {
	lower := hex.EncodeToString(a[:])
	hash := keccak256([]byte(lower))
	out := []byte(lower)
	for i, c := range out {
		if c < 'a' || c > 'f' {
			continue
		}
		nibble := hash[i/2]
		if i%2 == 0 {
			nibble >>= 4
		}
		if nibble&0x0f >= 8 {
			out[i] = c - ('a' - 'A')
		}
	}
	return "0x" + string(out)
}

func (a Address) String() string {
	return a.Hex()
}

// MarshalText implements encoding.TextMarshaler.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.Hex()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

func keccak256(data []byte) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	return h.Sum(nil)
}
