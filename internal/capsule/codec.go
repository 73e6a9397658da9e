// SPDX-License-Identifier: Apache-2.0

package capsule

import (
	"encoding/json"
	"fmt"

	"github.com/beapsec/beap-core/models"
)

// PackageVersion is the current BEAP package envelope version.
const PackageVersion = 1

// EncodePackage serializes a package to its canonical form: fixed key order
// given by the struct layout, no extraneous whitespace, hashes as lowercase
// hex, binary payloads as standard base64. Two builds from identical config
// and identical pipeline outputs encode to identical bytes, which is what
// lets recipients de-duplicate by content.
func EncodePackage(pkg *models.BeapPackage) ([]byte, error) {
	data, err := json.Marshal(pkg)
	if err != nil {
		return nil, fmt.Errorf("encoding package: %w", err)
	}
	return data, nil
}

// DecodePackage parses canonical package bytes and checks the envelope
// version.
func DecodePackage(data []byte) (*models.BeapPackage, error) {
	var pkg models.BeapPackage
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, fmt.Errorf("decoding package: %w", err)
	}
	if pkg.Version != PackageVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, pkg.Version)
	}
	return &pkg, nil
}
