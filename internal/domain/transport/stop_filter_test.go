package transport_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sakhatrip/sakhatrip-go/internal/domain/reference"
	"github.com/sakhatrip/sakhatrip-go/internal/domain/transport"
)

func admissibleStop() transport.StopRecord {
	return transport.StopRecord{
		ID:     "stop-yakutsk-center",
		Name:   "Автовокзал Якутск",
		CityID: "якутск",
	}
}

func TestAdmitStop_AcceptsWellFormedStop(t *testing.T) {
	err := transport.AdmitStop(admissibleStop(), reference.Embedded())

	assert.NoError(t, err)
}

func TestAdmitStop_RejectsEmptyName(t *testing.T) {
	r := admissibleStop()
	r.Name = ""

	assert.Error(t, transport.AdmitStop(r, reference.Embedded()))
}

func TestAdmitStop_RejectsCityOutsideReference(t *testing.T) {
	r := admissibleStop()
	r.CityID = "атлантида"

	assert.Error(t, transport.AdmitStop(r, reference.Embedded()))
}

func TestAdmitStop_RejectsDegenerateVirtualID(t *testing.T) {
	r := admissibleStop()
	r.ID = "virtual-stop-"

	assert.Error(t, transport.AdmitStop(r, reference.Embedded()))

	r.ID = "virtual-stop---"
	assert.Error(t, transport.AdmitStop(r, reference.Embedded()))
}

func TestAdmitStop_RejectsDashRuns(t *testing.T) {
	r := admissibleStop()
	r.ID = "stop---broken"

	assert.Error(t, transport.AdmitStop(r, reference.Embedded()))
}

func TestAdmitStop_FerryKeywordRequiresTerminalMetadata(t *testing.T) {
	r := admissibleStop()
	r.Name = "Паромная переправа"

	assert.Error(t, transport.AdmitStop(r, reference.Embedded()))

	r.Metadata = map[string]string{"type": "ferry_terminal"}
	assert.NoError(t, transport.AdmitStop(r, reference.Embedded()))
}

func TestFilterAdmissibleStops_SplitsAndReportsReasons(t *testing.T) {
	records := []transport.StopRecord{
		admissibleStop(),
		{ID: "bad", Name: "", CityID: "якутск"},
	}

	admitted, rejected := transport.FilterAdmissibleStops(records, reference.Embedded())

	assert.Len(t, admitted, 1)
	assert.Len(t, rejected, 1)
	assert.Contains(t, rejected[0].Reason, "empty name")
}

func TestClassifyStop(t *testing.T) {
	airport := transport.StopRecord{ID: "stop-1", Name: "Аэропорт Якутск", CityID: "якутск", IsAirport: true}
	ferry := transport.StopRecord{ID: "stop-2", Name: "Речной порт", CityID: "якутск", Metadata: map[string]string{"type": "ferry_terminal"}}
	ground := transport.StopRecord{ID: "stop-3", Name: "Автовокзал", CityID: "якутск"}

	assert.Equal(t, transport.StopTypeAirport, transport.ClassifyStop(airport))
	assert.Equal(t, transport.StopTypeFerryTerminal, transport.ClassifyStop(ferry))
	assert.Equal(t, transport.StopTypeGround, transport.ClassifyStop(ground))
}

func TestIsFerryTerminal_KeywordAndException(t *testing.T) {
	byKeyword := transport.StopRecord{ID: "stop-perepava", Name: "Переправа Нижний Бестях"}
	assert.True(t, transport.IsFerryTerminal(byKeyword))

	byException := transport.StopRecord{ID: "якутск-речной-порт", Name: "Речной вокзал"}
	assert.True(t, transport.IsFerryTerminal(byException))

	plain := transport.StopRecord{ID: "stop-bus", Name: "Автовокзал"}
	assert.False(t, transport.IsFerryTerminal(plain))
}
