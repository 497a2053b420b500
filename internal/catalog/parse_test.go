package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_FirstRecordWins(t *testing.T) {
	body := []byte(`<?xml version="1.0"?>
<products>
  <record>
    <sku> A-1 </sku>
    <name>Lamp</name>
    <description>A desk lamp</description>
    <price>3.5</price>
    <available>yes</available>
    <image>http://img/lamp.png</image>
    <unit>each</unit>
  </record>
  <record>
    <sku>B-2</sku>
    <name>Chair</name>
  </record>
</products>`)

	p, err := Parse(body)
	require.NoError(t, err)

	assert.Equal(t, "A-1", p.SKU)
	assert.Equal(t, "Lamp", p.Name)
	assert.Equal(t, "A desk lamp", p.Description)
	assert.Equal(t, "3.50", p.Price)
	assert.Equal(t, "yes", p.Available)
	assert.Equal(t, "http://img/lamp.png", p.Image)
	assert.Equal(t, "each", p.Unit)
	assert.Empty(t, p.Weight)
}

func TestParse_ZeroRecordsIsNotFound(t *testing.T) {
	_, err := Parse([]byte(`<products></products>`))
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.Equal(t, OutcomeNotFound, Classify(err))
}

func TestParse_RootRecord(t *testing.T) {
	p, err := Parse([]byte(`<record><sku>X</sku></record>`))
	require.NoError(t, err)
	assert.Equal(t, "X", p.SKU)
}

func TestParse_NestedFieldsAndEmptyValues(t *testing.T) {
	body := []byte(`<r><group><record>
		<meta><sku>N-9</sku></meta>
		<name>   </name>
		<weight>2kg</weight>
	</record></group></r>`)

	p, err := Parse(body)
	require.NoError(t, err)
	assert.Equal(t, "N-9", p.SKU)
	assert.Empty(t, p.Name)
	assert.Equal(t, "2kg", p.Weight)
}

func TestParse_UnparsablePriceLeftUnset(t *testing.T) {
	p, err := Parse([]byte(`<record><sku>S</sku><price>call us</price></record>`))
	require.NoError(t, err)
	assert.Empty(t, p.Price)
}

func TestParse_MalformedBodyIsTransportError(t *testing.T) {
	_, err := Parse([]byte(`not xml at all <`))
	require.Error(t, err)
	assert.True(t, IsTransportError(err))
}

func TestParse_Latin1Charset(t *testing.T) {
	body := append([]byte(`<?xml version="1.0" encoding="ISO-8859-1"?><record><name>Caf`), 0xe9, '<', '/', 'n', 'a', 'm', 'e', '>', '<', '/', 'r', 'e', 'c', 'o', 'r', 'd', '>')

	p, err := Parse(body)
	require.NoError(t, err)
	assert.Equal(t, "Café", p.Name)
}
