package eventio_test

import (
	"bytes"
	"errors"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/phil-mansfield/hepstat/lib/compress"
	"github.com/phil-mansfield/hepstat/lib/dict"
	"github.com/phil-mansfield/hepstat/lib/eventio"
	"github.com/phil-mansfield/hepstat/lib/kinematics"
	"github.com/phil-mansfield/hepstat/lib/particles"
	"github.com/phil-mansfield/hepstat/lib/testutil"
)

const testTable = `! EPOS PDG QGSJET GHEISHA SIBYLL name ifl1 ifl2 ifl3 counter mass charge width mult degen status
12   11   99 3  3  e-  99 99 99 1 0.000511 -1 0 1 2 S
1120 2212 2  14 13 p   1  1  2  3 0.938    1  0 1 2 S
1220 2112 3  13 14 n   1  2  2  4 0.9396   0  0 1 2 S
120  211  7  8  7  pi+ 1  -2 0  5 0.13957  1  0 1 1 S
110  111  6  7  6  pi0 1  -1 0  6 0.13498  0  0 1 1 S
130  321  99 99 99 K+  1  -3 99 7 0.49368  1  0 1 1 S
`

func testDict(t *testing.T, c dict.Coding) *dict.Dictionary {
	d, err := dict.Build(c, strings.NewReader("12 11 99 3 3 e- 99 99 99 1 0.000511 -1 0 1 2 S\n"),
		strings.NewReader(testTable), nil)
	require.NoError(t, err)
	return d
}

func upload(
	t *testing.T, format eventio.Format, text string, d *dict.Dictionary,
) (*particles.DataFile, *testutil.LogHandlerSpy, error) {
	log, spy := testutil.NewLogger()
	f, err := eventio.Upload(format, strings.NewReader(text), d,
		eventio.WithLogger(log), eventio.WithName("test.dat"))
	return f, spy, err
}

const oscarText = `# OSC1999A
# final_id_p_x
# EPOS 3.4  (197,79)+(197,79) nncm 200.0  eqsp
1 3 2.5 0.1 0
0 1120 0 0.0 0.0 1.0 1.3695 0.938 0.0 0.0 0.0 0.0
1 120 0 1.0 0.0 0.0 1.0097 0.13957 0.0 0.0 0.0 0.0
2 110 1 0.0 1.0 0.0 1.0090 0.13498 0.0 0.0 0.0 0.0
2 2 7.0 0.2 0
0 -1120 0 0.0 0.0 -2.0 2.2 0.938 0.0 0.0
1 12 0 0.5 0.5 0.5 0.866 0.000511 0.0 0.0 0.0 0.0
`

func TestOSCAR(t *testing.T) {
	d := testDict(t, dict.EPOS)
	f, spy, err := upload(t, eventio.OSCAR, oscarText, d)
	require.NoError(t, err)

	assert.Equal(t, "epos", f.Format)
	assert.Equal(t, 200.0, f.Run.Snn)
	assert.Equal(t, "EPOS 3.4  (197,79)+(197,79)", f.Run.Signature)
	require.Equal(t, 2, f.Len())

	e := f.Events[0]
	assert.Equal(t, int64(1), e.Header().ID)
	assert.Equal(t, 3, e.Header().NOut)
	assert.Equal(t, 2.5, e.Header().B)
	assert.Equal(t, 1.0, e.Header().Weight)
	require.Equal(t, 3, e.Len())

	p := e.At(0)
	assert.Equal(t, int32(1120), p.Code())
	assert.Equal(t, r3.Vec{ Z: 1 }, p.Momentum())
	assert.True(t, p.IsFinal())
	assert.False(t, e.At(2).IsFinal())
	assert.InDelta(t, math.Sqrt(0.938*0.938 + 1), p.Energy(d), 1e-12)
	assert.Equal(t, 1.0, p.ECharge(d))
	assert.Equal(t, 1.0, p.BCharge(d))

	// The antiproton line is one token short: it is skipped, the event's
	// count no longer matches and the rest of the file is still read.
	e = f.Events[1]
	require.Equal(t, 1, e.Len())
	assert.Equal(t, -1.0, e.At(0).ECharge(d))
	assert.Equal(t, 1.0, e.At(0).LCharge(d))
	assert.True(t, spy.HasWarning("skipping malformed line"))
	assert.True(t, spy.HasWarning("particle count does not match event header"))
}

func TestOSCARFieldError(t *testing.T) {
	text := "1 1 0 0 0\n0 1120 0 0.0 abc 1.0 1.3695 0.938 0.0 0.0 0.0 0.0\n"
	_, _, err := upload(t, eventio.OSCAR, text, testDict(t, dict.EPOS))
	require.Error(t, err)
	assert.True(t, errors.Is(err, eventio.ErrFieldParse))

	var perr *eventio.ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "test.dat", perr.File)
	assert.Equal(t, 2, perr.Line)
	assert.Equal(t, 5, perr.Column)
	assert.Equal(t, "abc", perr.Token)
}

func TestOSCARUnknownCode(t *testing.T) {
	text := "1 1 0 0 0\n0 9876 0 0.0 0.0 1.0 1.3695 0.938 0.0 0.0 0.0 0.0\n"
	_, _, err := upload(t, eventio.OSCAR, text, testDict(t, dict.EPOS))
	assert.True(t, errors.Is(err, dict.ErrUnknownCode))
}

func TestOSCAROrphanAndUndefined(t *testing.T) {
	text := `0 1120 0 0.0 0.0 1.0 1.3695 0.938 0.0 0.0 0.0 0.0
1 2 0 0 0
0 130 0 0.0 0.0 1.0 1.1 0.49368 0.0 0.0 0.0 0.0
1 130 0 0.0 0.0 2.0 2.1 0.49368 0.0 0.0 0.0 0.0
`
	f, spy, err := upload(t, eventio.OSCAR, text, testDict(t, dict.EPOS))
	require.NoError(t, err)
	require.Equal(t, 1, f.Len())
	assert.Equal(t, 2, f.Events[0].Len())
	assert.True(t, spy.HasWarning("skipping particle line outside of an event"))

	// K+ has an undefined flavor. It is reported once, not once per
	// particle.
	n := 0
	for _, r := range spy.Records() {
		if r.Message == "using undefined dictionary fields as zero" { n++ }
	}
	assert.Equal(t, 1, n)
	val, ok := spy.Attr("using undefined dictionary fields as zero", "fields")
	require.True(t, ok)
	assert.Equal(t, "ifl3", val.String())
}

func TestUrQMD(t *testing.T) {
	text := `OSC1997A
final_id_p_x
 UrQMD 3.4  (197,79)+(197,79)  eqsp  0.7700E+01
1 2 3.0 0.5
1 2212 0.0 0.0 1.0 1.3695 0.938 0.0 0.0 0.0 0.0
2 -211 1.0 0.0 0.0 1.0097 0.13957 0.0 0.0 0.0 0.0
`
	d := testDict(t, dict.PDG)
	f, spy, err := upload(t, eventio.UrQMD, text, d)
	require.NoError(t, err)

	assert.Equal(t, 7.7, f.Run.Snn)
	assert.Contains(t, f.Run.Signature, "UrQMD 3.4")
	assert.False(t, spy.HasWarning("skipping malformed line"))

	require.Equal(t, 1, f.Len())
	e := f.Events[0]
	require.Equal(t, 2, e.Len())
	assert.Equal(t, 3.0, e.Header().B)
	for i := 0; i < e.Len(); i++ {
		assert.True(t, e.At(i).IsFinal())
	}
	assert.Equal(t, -1.0, e.At(1).ECharge(d))
	assert.Equal(t, 0.13957, e.At(1).Mass(d))
}

func TestQGSM(t *testing.T) {
	text := `  Results of QGSM for Au+Au
  (sqrt(s)= 4.5 GeV)
  some text
  more text
1 3 4.0 3.0 -2.0
1 0 0 1 2212 0.1 0.2 0.3 5.0 0 0.938
-1 0 0 0 -211 0.0 0.0 -0.5 1.0 0 0.13957
0 1 0 0 12 0.0 0.5 0.0 0.5 0 0.0
`
	f, _, err := upload(t, eventio.QGSM, text, nil)
	require.NoError(t, err)

	assert.Equal(t, 4.5, f.Run.Snn)
	assert.Equal(t, "Results of QGSM for Au+Au", f.Run.Signature)
	require.Equal(t, 1, f.Len())

	e := f.Events[0]
	assert.Equal(t, 4.0, e.Header().B)
	assert.Equal(t, 3.0, e.Header().Bx)
	assert.Equal(t, -2.0, e.Header().By)
	require.Equal(t, 3, e.Len())

	p := e.At(0)
	assert.Equal(t, int32(2212), p.Code())
	assert.Equal(t, 1.0, p.ECharge(nil))
	assert.Equal(t, 1.0, p.BCharge(nil))
	assert.Equal(t, 0.0, p.LCharge(nil))
	assert.True(t, p.IsFinal())
	assert.Equal(t, -1.0, e.At(1).ECharge(nil))
	assert.Equal(t, 1.0, e.At(2).LCharge(nil))
}

func TestPHQMD(t *testing.T) {
	text := `2 1 0.5 0.0 0.0
secondary header line with nine tokens in it right here
2212 1 0.0 0.0 1.0 1.3695 0 0 1
-211 -1 1.0 0.0 0.0 1.0097 0 0 2
1 1 0.0 0.0 0.0
skipped
2112 0 0.0 0.0 0.0 0.9396 0 0 3
`
	d := testDict(t, dict.PDG)
	f, spy, err := upload(t, eventio.PHQMD, text, d)
	require.NoError(t, err)
	require.Equal(t, 2, f.Len())
	assert.Equal(t, 0, spy.Count(slog.LevelWarn))

	e := f.Events[0]
	assert.Equal(t, int64(0), e.Header().ID)
	require.Equal(t, 2, e.Len())

	p := e.At(0)
	assert.Equal(t, 1.3695, p.Energy(d))
	assert.InDelta(t, math.Sqrt(1.3695*1.3695 - 1), p.Mass(d), 1e-12)
	assert.Equal(t, 1.0, p.ECharge(d))
	assert.Equal(t, 1.0, p.BCharge(d))
	assert.Equal(t, 0.0, e.At(1).BCharge(d))

	assert.Equal(t, int64(1), f.Events[1].Header().ID)
	assert.InDelta(t, 0.9396, f.Events[1].At(0).Mass(d), 1e-12)
}

func TestHepMC(t *testing.T) {
	text := `HepMC::Version 3.02.02
HepMC::Asciiv3-START_EVENT_LISTING
E 0 1 3
U GEV MM
W 0.5
A 0 GenCrossSection 1.0 0.1 -1 -1
P 1 0 2212 0.0 0.0 10.0 10.044 0.938 4
V -1 0 [1]
P 2 -1 2212 0.0 0.0 9.0 9.049 0.938 1
P 3 -1 -211 1.0 0.0 0.0 1.0097 0.13957 1
E 1 0 1
P 1 0 2112 0.0 0.0 1.0 1.3714 0.9396 1
HepMC::Asciiv3-END_EVENT_LISTING
`
	d := testDict(t, dict.PDG)
	f, _, err := upload(t, eventio.HepMC, text, d)
	require.NoError(t, err)

	assert.Equal(t, "HepMC::Version 3.02.02", f.Run.Signature)
	require.Equal(t, 2, f.Len())

	e := f.Events[0]
	assert.Equal(t, 0.5, e.Header().Weight)
	assert.Equal(t, 3, e.Header().NOut)
	require.Equal(t, 3, e.Len())
	assert.False(t, e.At(0).IsFinal())
	assert.True(t, e.At(1).IsFinal())
	assert.Equal(t, 9.049, e.At(1).Energy(d))
	assert.Equal(t, -1.0, e.At(2).ECharge(d))

	hp := e.At(0).(*eventio.HepMCParticle)
	assert.Equal(t, 0.938, hp.GeneratedMass)

	assert.Equal(t, int64(1), f.Events[1].Header().ID)
	assert.Equal(t, 1.0, f.Events[1].Header().Weight)
}

func TestLabFrame(t *testing.T) {
	d := testDict(t, dict.EPOS)
	log, _ := testutil.NewLogger()
	f, err := eventio.Upload(eventio.OSCAR, strings.NewReader(oscarText), d,
		eventio.WithLogger(log), eventio.WithLabFrame(true))
	require.NoError(t, err)

	p0 := r3.Vec{ Z: 1 }
	e0 := kinematics.Energy(0.938, p0)
	exp := kinematics.BoostToLab(p0, e0, 0.938)

	p := f.Events[0].At(0)
	assert.InDelta(t, exp.Z, p.Momentum().Z, 1e-12)
	assert.InDelta(t, kinematics.Energy(0.938, exp), p.Energy(d), 1e-12)
}

func TestHugeDeclaredCount(t *testing.T) {
	text := `  Results of QGSM for Au+Au
  (sqrt(s)= 4.5 GeV)
  some text
  more text
1 2000000000 0 0 0
1 0 0 1 2212 0.1 0.2 0.3 5.0 0 0.938
`
	f, spy, err := upload(t, eventio.QGSM, text, nil)
	require.NoError(t, err)
	require.Equal(t, 1, f.Len())

	b := f.Events[0].(*eventio.QGSMBlock)
	assert.Equal(t, 1, b.Len())
	assert.LessOrEqual(t, cap(b.Particles), 1 << 16)
	assert.Equal(t, 2000000000, b.Head.NOut)
	assert.True(t, spy.HasWarning("particle count does not match event header"))
}

func TestHepMCLargeEventID(t *testing.T) {
	text := `HepMC::Version 3.02.02
E 5000000000 1 1
P 1 0 2212 0.0 0.0 1.0 1.3695 0.938 1
`
	d := testDict(t, dict.PDG)
	f, _, err := upload(t, eventio.HepMC, text, d)
	require.NoError(t, err)
	require.Equal(t, 1, f.Len())
	assert.Equal(t, int64(5000000000), f.Events[0].Header().ID)
}

func TestQGSMLabFrame(t *testing.T) {
	text := `  Results of QGSM for Au+Au
  (sqrt(s)= 4.5 GeV)
  some text
  more text
1 2 0.0 0.0 0.0
1 0 0 1 2212 0.1 0.0 1.0 0.0 0 0.938
1 0 0 1 2212 0.1 0.0 1.0 5.0 0 0.938
`
	log, _ := testutil.NewLogger()
	f, err := eventio.Upload(eventio.QGSM, strings.NewReader(text), nil,
		eventio.WithLogger(log), eventio.WithLabFrame(true))
	require.NoError(t, err)
	require.Equal(t, 2, f.Events[0].Len())

	p0 := r3.Vec{ X: 0.1, Z: 1 }
	exp := kinematics.BoostToLab(p0, kinematics.Energy(0.938, p0), 0.938)

	for i := 0; i < 2; i++ {
		p := f.Events[0].At(i).(*eventio.QGSMParticle)
		assert.InDelta(t, exp.Z, p.Momentum().Z, 1e-12, "%d)", i)
		assert.InDelta(t, exp.X, p.Momentum().X, 1e-12, "%d)", i)
	}
	qp := f.Events[0].At(1).(*eventio.QGSMParticle)
	assert.Equal(t, 5.0, qp.PzLab)
}

func TestFakeOSCAR(t *testing.T) {
	events := eventio.NewFakeEvents(eventio.FakeConfig{
		Events: 4, Particles: 10, Codes: []int32{ 1120, 120, -120 },
		Masses: []float64{ 0.938, 0.13957, 0.13957 }, MaxMomentum: 2,
		NonFinal: 0.3, Seed: 42,
	})
	run := particles.RunHeader{ Signature: "(1,1)+(1,1)", Snn: 17.3 }

	buf := &bytes.Buffer{ }
	require.NoError(t, eventio.WriteOSCAR(buf, run, events))

	d := testDict(t, dict.EPOS)
	f, spy, err := upload(t, eventio.OSCAR, buf.String(), d)
	require.NoError(t, err)
	assert.Equal(t, 0, spy.Count(slog.LevelWarn))
	assert.Equal(t, run, f.Run)
	require.Equal(t, len(events), f.Len())

	for i := range events {
		e := f.Events[i]
		assert.Equal(t, events[i].Header.ID, e.Header().ID)
		require.Equal(t, len(events[i].Particles), e.Len())
		for j, exp := range events[i].Particles {
			p := e.At(j).(*eventio.OSCARParticle)
			assert.Equal(t, exp, *p)
		}
	}
}

func TestUploadFiles(t *testing.T) {
	dir := t.TempDir()
	d := testDict(t, dict.EPOS)

	names := []string{ filepath.Join(dir, "a.dat"), filepath.Join(dir, "b.dat.zst") }
	for _, name := range names {
		wr, err := compress.Create(name)
		require.NoError(t, err)
		_, err = wr.Write([]byte(oscarText))
		require.NoError(t, err)
		require.NoError(t, wr.Close())
	}

	raw, err := os.ReadFile(names[1])
	require.NoError(t, err)
	require.Equal(t, compress.ZStd, compress.Detect(raw))

	log, _ := testutil.NewLogger()
	f, err := eventio.UploadFiles(eventio.OSCAR, names, d, eventio.WithLogger(log))
	require.NoError(t, err)
	assert.Equal(t, 4, f.Len())
	assert.Equal(t, 200.0, f.Run.Snn)

	_, err = eventio.UploadFiles(eventio.OSCAR,
		[]string{ filepath.Join(dir, "missing.dat") }, d, eventio.WithLogger(log))
	assert.Error(t, err)
}

func TestParseFormat(t *testing.T) {
	tests := []struct{
		s string
		format eventio.Format
		coding dict.Coding
	} {
		{"epos", eventio.OSCAR, dict.EPOS},
		{"UrQMD", eventio.UrQMD, dict.PDG},
		{"qgsm", eventio.QGSM, dict.PDG},
		{"phqmd", eventio.PHQMD, dict.PDG},
		{"hepmc", eventio.HepMC, dict.PDG},
	}

	for _, tt := range tests {
		format, err := eventio.ParseFormat(tt.s)
		require.NoError(t, err)
		assert.Equal(t, tt.format, format)
		assert.Equal(t, tt.coding, format.Coding())
	}

	_, err := eventio.ParseFormat("lcio")
	assert.True(t, errors.Is(err, eventio.ErrUnknownFormat))
	assert.False(t, eventio.QGSM.UsesDictionary())
	assert.True(t, eventio.OSCAR.UsesDictionary())

	_, err = eventio.Upload(eventio.OSCAR, strings.NewReader(oscarText), nil)
	assert.Error(t, err)
}
