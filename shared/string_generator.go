package shared

import (
	"strings"

	"github.com/Pallinder/go-randomdata"
	"github.com/satori/go.uuid"
)

// StringGenerator produces the opaque identifiers the rest of the code needs:
// uuids for record codes and stored files, readable names for generated
// accounts. Injected so tests can pin the values.
type StringGenerator struct {
}

func (g *StringGenerator) GenerateUuid() string {
	return uuid.NewV4().String()
}

func (g *StringGenerator) GenerateRandomName() string {
	return strings.ToLower(randomdata.SillyName())
}
