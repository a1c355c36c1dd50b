package pkg

import (
	"math"
	"testing"

	"github.com/tada/mqtt-codec/testutils"
)

func TestIDManager_NextFreePacketID(t *testing.T) {
	idm := NewIDManager()
	testutils.CheckEqual(uint16(1), idm.NextFreePacketID(), t)
	testutils.CheckEqual(uint16(2), idm.NextFreePacketID(), t)
}

func TestIDManager_NextFreePacketID_flip(t *testing.T) {
	idm := NewIDManager().(*idManager)
	idm.lastUsed = math.MaxUint16 - 1
	testutils.CheckEqual(uint16(math.MaxUint16), idm.NextFreePacketID(), t)
	testutils.CheckEqual(uint16(1), idm.NextFreePacketID(), t)
}

func TestIDManager_NextFreePacketID_flipInUse(t *testing.T) {
	idm := NewIDManager().(*idManager)
	idm.lastUsed = math.MaxUint16 - 2
	idm.inUse[uint16(math.MaxUint16)] = true
	idm.inUse[1] = true
	testutils.CheckEqual(uint16(math.MaxUint16-1), idm.NextFreePacketID(), t)
	testutils.CheckEqual(uint16(2), idm.NextFreePacketID(), t)
}

func TestIDManager_Reserve(t *testing.T) {
	idm := NewIDManager()
	testutils.CheckTrue(idm.Reserve(1), t)
	testutils.CheckFalse(idm.Reserve(1), t)
	testutils.CheckFalse(idm.Reserve(0), t)
	testutils.CheckEqual(uint16(2), idm.NextFreePacketID(), t)
	idm.ReleasePacketID(1)
	testutils.CheckTrue(idm.Reserve(1), t)
}

func TestIDManager_allInUse(t *testing.T) {
	idm := NewIDManager().(*idManager)
	for i := 1; i <= math.MaxUint16; i++ {
		idm.inUse[uint16(i)] = true
	}
	id := idm.NextFreePacketID()
	testutils.CheckTrue(id != 0, t)
}
