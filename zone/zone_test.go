package zone

import (
	"encoding/json"
	"testing"

	"go.viam.com/test"
)

func TestRadiusMonotonic(t *testing.T) {
	all := All()
	test.That(t, all[0], test.ShouldEqual, Fine)
	test.That(t, all[0].Radius(), test.ShouldEqual, 0)
	for i := 1; i < len(all); i++ {
		test.That(t, all[i].Radius(), test.ShouldBeGreaterThan, all[i-1].Radius())
	}
	test.That(t, Z10.Radius(), test.ShouldEqual, 10)
	test.That(t, Z0.Radius(), test.ShouldAlmostEqual, 0.3)
}

func TestExactStop(t *testing.T) {
	test.That(t, Fine.IsExactStop(), test.ShouldBeTrue)
	test.That(t, Zone("bogus").IsExactStop(), test.ShouldBeTrue)
	for _, z := range All()[1:] {
		test.That(t, z.IsExactStop(), test.ShouldBeFalse)
	}
}

func TestParse(t *testing.T) {
	z, err := Parse(" Z20 ")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, z, test.ShouldEqual, Z20)

	_, err = Parse("z15")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "unknown zone")
}

func TestJSON(t *testing.T) {
	var decoded struct {
		Zone Zone `json:"zone"`
	}
	test.That(t, json.Unmarshal([]byte(`{"zone":"fine"}`), &decoded), test.ShouldBeNil)
	test.That(t, decoded.Zone, test.ShouldEqual, Fine)

	err := json.Unmarshal([]byte(`{"zone":"z3"}`), &decoded)
	test.That(t, err, test.ShouldNotBeNil)

	out, err := json.Marshal(decoded)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(out), test.ShouldEqual, `{"zone":"fine"}`)

	_, err = json.Marshal(struct{ Zone Zone }{Zone("z3")})
	test.That(t, err, test.ShouldNotBeNil)
}

func TestNames(t *testing.T) {
	test.That(t, Names(), test.ShouldResemble, []string{"fine", "z0", "z1", "z5", "z10", "z20", "z50"})
}
