// Package vectors checks the blowfish package against tables of known-answer
// test vectors, such as the published set that ships embedded in the package.
package vectors

import (
	_ "embed"
	"encoding/hex"
	"io/ioutil"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/dcrodman/blowfish/pkg/blowfish"
)

// Values accepted for Vector.ExpectError.
const (
	ExpectKeyLength   = "key_length"
	ExpectBlockLength = "block_length"
)

//go:embed published.yaml
var publishedYAML []byte

// Vector is a single known-answer test. All fields besides Name are hex.
type Vector struct {
	Name       string `yaml:"name"`
	Key        string `yaml:"key"`
	Plaintext  string `yaml:"plaintext"`
	Ciphertext string `yaml:"ciphertext"`
	// When set the vector passes only if the cipher rejects it with this error.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// Table is a named, ordered list of vectors.
type Table struct {
	Name    string   `yaml:"name"`
	Vectors []Vector `yaml:"vectors"`
}

// Published returns the published Blowfish test vectors. Each call returns a
// fresh copy that the caller may modify.
func Published() *Table {
	t, err := Parse(publishedYAML)
	if err != nil {
		panic(err)
	}
	return t
}

// Load reads a vector table from a YAML file.
func Load(path string) (*Table, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading vector table %s", path)
	}
	t, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "loading %s", path)
	}
	return t, nil
}

// Parse decodes a YAML vector table and checks that every vector is usable.
func Parse(data []byte) (*Table, error) {
	t := &Table{}
	if err := yaml.UnmarshalStrict(data, t); err != nil {
		return nil, errors.Wrap(err, "parsing vector table")
	}
	if len(t.Vectors) == 0 {
		return nil, errors.New("vector table has no vectors")
	}

	seen := make(map[string]bool, len(t.Vectors))
	for i, v := range t.Vectors {
		if v.Name == "" {
			return nil, errors.Errorf("vector %d has no name", i)
		}
		if seen[v.Name] {
			return nil, errors.Errorf("duplicate vector name %q", v.Name)
		}
		seen[v.Name] = true

		switch v.ExpectError {
		case "", ExpectKeyLength, ExpectBlockLength:
		default:
			return nil, errors.Errorf("vector %q: unknown expect_error %q", v.Name, v.ExpectError)
		}
		if _, _, _, err := v.Decode(); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Decode returns the raw key, plaintext and ciphertext of the vector. Block
// lengths are only enforced for vectors that expect to succeed.
func (v *Vector) Decode() (key, plaintext, ciphertext []byte, err error) {
	if key, err = hex.DecodeString(v.Key); err != nil {
		return nil, nil, nil, errors.Wrapf(err, "vector %q: key", v.Name)
	}
	if plaintext, err = hex.DecodeString(v.Plaintext); err != nil {
		return nil, nil, nil, errors.Wrapf(err, "vector %q: plaintext", v.Name)
	}
	if ciphertext, err = hex.DecodeString(v.Ciphertext); err != nil {
		return nil, nil, nil, errors.Wrapf(err, "vector %q: ciphertext", v.Name)
	}

	if v.ExpectError == "" {
		if len(plaintext) != blowfish.BlockSize || len(ciphertext) != blowfish.BlockSize {
			return nil, nil, nil, errors.Errorf("vector %q: blocks must be %d bytes", v.Name, blowfish.BlockSize)
		}
	}
	return key, plaintext, ciphertext, nil
}
