package tuner

import "time"

// YardStick One (CC1111) USB protocol. Commands go out EP5 framed as
// app(1) + cmd(1) + length(2 LE) + payload; responses start with '@'.
const (
	vendorID  = 0x1D50
	productID = 0x605B

	appNIC    = 0x42
	appSpecan = 0x43
	appSystem = 0xFF

	sysCmdPeek = 0x80
	sysCmdPoke = 0x81
	sysCmdPing = 0x82

	specanStart = 0x40
	specanStop  = 0x41
	specanQueue = 0x01

	responseMarker = 0x40 // '@'

	// Frequency control word and modem configuration registers.
	regFREQ2   = 0xDF09
	regFREQ1   = 0xDF0A
	regFREQ0   = 0xDF0B
	regMDMCFG1 = 0xDF10
	regMDMCFG0 = 0xDF11

	crystalFreqHz = 24000000

	usbDefaultTimeout = 1000 * time.Millisecond
)
