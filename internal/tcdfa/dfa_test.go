package tcdfa

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// digitDFA recognizes one-or-more-digit runs: 0 -digit-> 1, 1 -digit-> 1,
// state 1 final.
const digitDFA = `
def 0 start
def 1 final
trans 0 1 48
trans 0 1 49
trans 1 1 48
trans 1 1 49
eof
`

func Test_Build_RoundTrip(t *testing.T) {
	assert := assert.New(t)

	d, err := Build(strings.NewReader(digitDFA))
	assert.NoError(err)
	assert.NotNil(d.Start())
	assert.True(d.Start().IsInitial)

	// dump then rebuild should behave identically on the same input.
	dumped := d.Dump()
	d2, err := Build(strings.NewReader(dumped))
	assert.NoError(err)

	r := bufio.NewReader(bytes.NewReader([]byte("101x")))
	res, ok := d.Recognize(r)
	assert.True(ok)
	assert.Equal([]byte("101"), res.Consumed)
	assert.True(res.State.IsFinal)

	r2 := bufio.NewReader(bytes.NewReader([]byte("101x")))
	res2, ok2 := d2.Recognize(r2)
	assert.True(ok2)
	assert.Equal(res.Consumed, res2.Consumed)
}

func Test_Build_DuplicateStateIsCritical(t *testing.T) {
	assert := assert.New(t)
	_, err := Build(strings.NewReader("def 0 start\ndef 0 final\neof\n"))
	assert.Error(err)
}

func Test_Build_UnknownTransitionTargetIsCritical(t *testing.T) {
	assert := assert.New(t)
	_, err := Build(strings.NewReader("def 0 start\ntrans 0 9 65\neof\n"))
	assert.Error(err)
}

func Test_Recognize_StopsOnNoTransitionWithoutConsuming(t *testing.T) {
	assert := assert.New(t)
	d, err := Build(strings.NewReader(digitDFA))
	assert.NoError(err)

	r := bufio.NewReader(bytes.NewReader([]byte("ab")))
	res, ok := d.Recognize(r)
	assert.True(ok)
	assert.Empty(res.Consumed)
	assert.False(res.State.IsFinal)

	// the 'a' must still be in the stream, unconsumed.
	b, err := r.ReadByte()
	assert.NoError(err)
	assert.Equal(byte('a'), b)
}

func Test_Recognize_CarriageReturnIgnoredForPositioning(t *testing.T) {
	assert := assert.New(t)
	d, err := Build(strings.NewReader(digitDFA))
	assert.NoError(err)

	r := bufio.NewReader(bytes.NewReader([]byte("1\r0")))
	res, ok := d.Recognize(r)
	assert.True(ok)
	assert.Equal([]byte("10"), res.Consumed)
}
