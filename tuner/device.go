package tuner

import (
	"context"
	"encoding/binary"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/gousb"

	"github.com/ushitora-anqou/aqfall/util"
)

// Device is a YardStick One style CC1111 dongle. The LO frequency is set by
// poking the FREQ control registers; spectrum rows come from the firmware
// spectrum analyzer, which streams per-channel RSSI over EP5.
type Device struct {
	usbContext   *gousb.Context
	usbDevice    *gousb.Device
	usbConfig    *gousb.Config
	usbInterface *gousb.Interface
	epIn         *gousb.InEndpoint
	epOut        *gousb.OutEndpoint
	Serial       string

	recvMu  sync.Mutex
	recvBuf []byte

	mu         sync.Mutex
	loFreqHz   uint64
	sampRateHz float64
	numChans   uint8
	sweeping   bool

	frames     chan *Frame
	stop       chan struct{}
	readerOnce sync.Once
	closeOnce  sync.Once
}

// OpenDevice opens the first matching dongle. A non-empty serial must match
// the device's serial number.
func OpenDevice(serial string) (*Device, error) {
	usbContext := gousb.NewContext()
	usbDevice, err := usbContext.OpenDeviceWithVIDPID(vendorID, productID)
	if err != nil {
		usbContext.Close()
		return nil, fmt.Errorf("failed to open device: %w", err)
	}
	if usbDevice == nil {
		usbContext.Close()
		return nil, fmt.Errorf("device not found")
	}

	got, _ := usbDevice.SerialNumber()
	if serial != "" && got != serial {
		usbDevice.Close()
		usbContext.Close()
		return nil, fmt.Errorf("device serial mismatch: wanted %s, got %s", serial, got)
	}

	usbDevice.SetAutoDetach(true)

	usbConfig, err := usbDevice.Config(1)
	if err != nil {
		usbDevice.Close()
		usbContext.Close()
		return nil, fmt.Errorf("failed to get configuration: %w", err)
	}
	usbInterface, err := usbConfig.Interface(0, 0)
	if err != nil {
		usbConfig.Close()
		usbDevice.Close()
		usbContext.Close()
		return nil, fmt.Errorf("failed to claim interface: %w", err)
	}
	epIn, err := usbInterface.InEndpoint(5)
	if err != nil {
		usbInterface.Close()
		usbConfig.Close()
		usbDevice.Close()
		usbContext.Close()
		return nil, fmt.Errorf("failed to get IN endpoint: %w", err)
	}
	epOut, err := usbInterface.OutEndpoint(5)
	if err != nil {
		usbInterface.Close()
		usbConfig.Close()
		usbDevice.Close()
		usbContext.Close()
		return nil, fmt.Errorf("failed to get OUT endpoint: %w", err)
	}

	d := &Device{
		usbContext:   usbContext,
		usbDevice:    usbDevice,
		usbConfig:    usbConfig,
		usbInterface: usbInterface,
		epIn:         epIn,
		epOut:        epOut,
		Serial:       got,
		frames:       make(chan *Frame, 10),
		stop:         make(chan struct{}),
	}
	d.drainReceiveBuffer()
	return d, nil
}

// Configure tunes the sweep window around the LO frequency and starts the
// firmware spectrum analyzer.
func (d *Device) Configure(loFreqHz uint64, sampRateHz float64, numChans uint8) error {
	if numChans == 0 {
		return fmt.Errorf("numChans must be 1-255, got %d", numChans)
	}

	d.mu.Lock()
	d.loFreqHz = loFreqHz
	d.sampRateHz = sampRateHz
	d.numChans = numChans
	d.mu.Unlock()

	spacingHz := uint64(sampRateHz) / uint64(numChans)
	if err := d.setFrequency(loFreqHz - uint64(sampRateHz/2)); err != nil {
		return err
	}
	if err := d.setChannelSpacing(spacingHz); err != nil {
		return err
	}
	return d.startSweep()
}

// SetLOFrequency retunes the dongle. The sweep is restarted so the firmware
// picks up the new base frequency.
func (d *Device) SetLOFrequency(hz uint64) error {
	d.mu.Lock()
	sampRateHz := d.sampRateHz
	sweeping := d.sweeping
	d.mu.Unlock()

	if sweeping {
		if err := d.stopSweep(); err != nil {
			return err
		}
	}
	if err := d.setFrequency(hz - uint64(sampRateHz/2)); err != nil {
		return err
	}
	d.mu.Lock()
	d.loFreqHz = hz
	d.mu.Unlock()
	util.Trace("device: retuned to %d Hz", hz)

	if sweeping {
		return d.startSweep()
	}
	return nil
}

func (d *Device) Frames() <-chan *Frame {
	return d.frames
}

func (d *Device) Close() error {
	if d.isSweeping() {
		d.stopSweep()
	}
	d.closeOnce.Do(func() { close(d.stop) })
	if d.usbInterface != nil {
		d.usbInterface.Close()
	}
	if d.usbConfig != nil {
		d.usbConfig.Close()
	}
	var err error
	if d.usbDevice != nil {
		err = d.usbDevice.Close()
	}
	if d.usbContext != nil {
		d.usbContext.Close()
	}
	return err
}

// Ping verifies the device answers on EP5.
func (d *Device) Ping() error {
	data := []byte{0x55, 0xAA}
	if _, err := d.send(appSystem, sysCmdPing, data, usbDefaultTimeout); err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}
	return nil
}

// setFrequency writes the FREQ2/1/0 control word for the 24 MHz crystal:
// FREQ = hz * 65536 / crystal. The three registers are consecutive, so one
// poke covers them.
func (d *Device) setFrequency(hz uint64) error {
	word := uint32(hz * 65536 / crystalFreqHz)
	regs := []byte{
		uint8((word >> 16) & 0xFF),
		uint8((word >> 8) & 0xFF),
		uint8(word & 0xFF),
	}
	if err := d.poke(regFREQ2, regs); err != nil {
		return fmt.Errorf("failed to set FREQ registers: %w", err)
	}
	return nil
}

// setChannelSpacing picks the CHANSPC_E/CHANSPC_M pair closest to the wanted
// spacing: spacing = (crystal / 2^18) * (256 + M) * 2^E.
func (d *Device) setChannelSpacing(spacingHz uint64) error {
	fxtal := float64(crystalFreqHz)
	target := float64(spacingHz)

	var bestE, bestM uint8
	bestError := 1e12
	for e := uint8(0); e < 4; e++ {
		m := target*float64(uint32(1)<<18)/(fxtal*float64(uint32(1)<<e)) - 256
		if m < 0 || m > 255 {
			continue
		}
		mRounded := uint8(m + 0.5)
		actual := fxtal / float64(uint32(1)<<18) * (256 + float64(mRounded)) * float64(uint32(1)<<e)
		diff := actual - target
		if diff < 0 {
			diff = -diff
		}
		if diff < bestError {
			bestError = diff
			bestE = e
			bestM = mRounded
		}
	}

	mdmcfg1, err := d.peekByte(regMDMCFG1)
	if err != nil {
		return fmt.Errorf("failed to read MDMCFG1: %w", err)
	}
	// CHANSPC_E lives in MDMCFG1[1:0]; keep the other bits.
	mdmcfg1 = (mdmcfg1 & 0xFC) | (bestE & 0x03)
	if err := d.poke(regMDMCFG1, []byte{mdmcfg1, bestM}); err != nil {
		return fmt.Errorf("failed to set channel spacing: %w", err)
	}
	return nil
}

func (d *Device) startSweep() error {
	d.mu.Lock()
	numChans := d.numChans
	d.mu.Unlock()

	if _, err := d.send(appNIC, specanStart, []byte{numChans}, usbDefaultTimeout); err != nil {
		return fmt.Errorf("failed to start specan: %w", err)
	}

	d.mu.Lock()
	d.sweeping = true
	d.mu.Unlock()
	d.startReceiveLoop()
	return nil
}

// startReceiveLoop spawns the EP5 reader. The reader lives until Close no
// matter how often the sweep is paused and resumed, so there is only ever
// one goroutine owning the frame channel.
func (d *Device) startReceiveLoop() {
	d.readerOnce.Do(func() {
		go d.receiveLoop()
	})
}

func (d *Device) stopSweep() error {
	d.mu.Lock()
	d.sweeping = false
	d.mu.Unlock()
	if _, err := d.send(appNIC, specanStop, nil, usbDefaultTimeout); err != nil {
		return fmt.Errorf("failed to stop specan: %w", err)
	}
	return nil
}

func (d *Device) isSweeping() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sweeping
}

// receiveLoop drains RSSI sweeps from the firmware for as long as the device
// lives. Raw readings convert to dBm as (raw ^ 0x80) / 2 - 88.
func (d *Device) receiveLoop() {
	defer close(d.frames)

	for {
		select {
		case <-d.stop:
			return
		default:
		}

		// Stay off the endpoint while the sweep is paused for a retune.
		if !d.isSweeping() {
			time.Sleep(10 * time.Millisecond)
			continue
		}

		data, err := d.recvFromApp(appSpecan, specanQueue, time.Second)
		if err != nil {
			// Timeouts are normal when the sweep is paused for a retune.
			continue
		}
		if len(data) == 0 {
			continue
		}

		d.mu.Lock()
		loFreqHz := d.loFreqHz
		sampRateHz := d.sampRateHz
		numChans := d.numChans
		d.mu.Unlock()

		rssi := make([]float32, len(data))
		for i, raw := range data {
			rssi[i] = float32(int8(raw^0x80))/2.0 - 88.0
		}
		frame := &Frame{
			Timestamp:     time.Now(),
			BaseFreqHz:    loFreqHz - uint64(sampRateHz/2),
			ChanSpacingHz: uint64(sampRateHz) / uint64(numChans),
			RSSI:          rssi,
		}
		select {
		case d.frames <- frame:
		default:
			// Drop if the display is behind.
		}
	}
}

func (d *Device) poke(address uint16, data []byte) error {
	payload := make([]byte, 2+len(data))
	binary.LittleEndian.PutUint16(payload[0:2], address)
	copy(payload[2:], data)
	if _, err := d.send(appSystem, sysCmdPoke, payload, usbDefaultTimeout); err != nil {
		return fmt.Errorf("poke failed at 0x%04X: %w", address, err)
	}
	return nil
}

func (d *Device) peekByte(address uint16) (uint8, error) {
	payload := make([]byte, 4)
	binary.LittleEndian.PutUint16(payload[0:2], 1)
	binary.LittleEndian.PutUint16(payload[2:4], address)
	data, err := d.send(appSystem, sysCmdPeek, payload, usbDefaultTimeout)
	if err != nil {
		return 0, fmt.Errorf("peek failed at 0x%04X: %w", address, err)
	}
	if len(data) < 1 {
		return 0, fmt.Errorf("peek returned no data")
	}
	return data[0], nil
}

// send writes one command packet to EP5 and waits for its response.
func (d *Device) send(app, cmd uint8, payload []byte, timeout time.Duration) ([]byte, error) {
	packet := make([]byte, 4+len(payload))
	packet[0] = app
	packet[1] = cmd
	binary.LittleEndian.PutUint16(packet[2:4], uint16(len(payload)))
	copy(packet[4:], payload)

	writeCtx, writeCancel := context.WithTimeout(context.Background(), timeout)
	n, err := d.epOut.WriteContext(writeCtx, packet)
	writeCancel()
	if err != nil {
		return nil, fmt.Errorf("failed to write to EP5: %w", err)
	}
	if n != len(packet) {
		return nil, fmt.Errorf("short write: wrote %d of %d bytes", n, len(packet))
	}
	return d.recvFromApp(app, cmd, timeout)
}

// recvFromApp reads EP5 until a response for the given app/cmd pair shows up
// or the timeout passes. Responses for other pairs are discarded.
// TODO: route responses into per-app queues instead of discarding, so a
// retune issued mid-sweep cannot eat the command response.
func (d *Device) recvFromApp(app, cmd uint8, timeout time.Duration) ([]byte, error) {
	d.recvMu.Lock()
	defer d.recvMu.Unlock()

	deadline := time.Now().Add(timeout)
	buf := make([]byte, 512)
	for {
		response, remaining, err := d.parseResponse(app, cmd)
		d.recvBuf = remaining
		if err == nil {
			return response, nil
		}

		remainingTime := time.Until(deadline)
		if remainingTime <= 0 {
			return nil, fmt.Errorf("timeout waiting for app 0x%02X cmd 0x%02X", app, cmd)
		}
		readTimeout := 100 * time.Millisecond
		if remainingTime < readTimeout {
			readTimeout = remainingTime
		}

		ctx, cancel := context.WithTimeout(context.Background(), readTimeout)
		n, err := d.epIn.ReadContext(ctx, buf)
		cancel()
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			errStr := strings.ToLower(err.Error())
			if strings.Contains(errStr, "timeout") || strings.Contains(errStr, "canceled") {
				continue
			}
			return nil, fmt.Errorf("failed to read from EP5: %w", err)
		}
		if n > 0 {
			d.recvBuf = append(d.recvBuf, buf[:n]...)
		}
	}
}

// parseResponse extracts one complete '@' framed response for app/cmd from
// the receive buffer. It returns the payload, the remaining buffer, and an
// error when no complete matching response is buffered yet.
func (d *Device) parseResponse(app, cmd uint8) ([]byte, []byte, error) {
	markerIdx := -1
	for i, b := range d.recvBuf {
		if b == responseMarker {
			markerIdx = i
			break
		}
	}
	if markerIdx == -1 {
		return nil, d.recvBuf, fmt.Errorf("no response marker found")
	}

	data := d.recvBuf[markerIdx:]
	if len(data) < 5 {
		return nil, d.recvBuf, fmt.Errorf("incomplete header")
	}
	gotApp := data[1]
	gotCmd := data[2]
	length := binary.LittleEndian.Uint16(data[3:5])
	totalLen := 5 + int(length)
	if len(data) < totalLen {
		return nil, d.recvBuf, fmt.Errorf("incomplete payload: have %d, need %d", len(data), totalLen)
	}
	if gotApp != app || gotCmd != cmd {
		return nil, data[totalLen:], fmt.Errorf("response mismatch: got app=0x%02X cmd=0x%02X", gotApp, gotCmd)
	}

	payload := make([]byte, length)
	copy(payload, data[5:totalLen])
	return payload, data[totalLen:], nil
}

// drainReceiveBuffer discards stale data left on EP5 from a previous session.
func (d *Device) drainReceiveBuffer() {
	buf := make([]byte, 512)
	for i := 0; i < 5; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		n, err := d.epIn.ReadContext(ctx, buf)
		cancel()
		if err != nil || n == 0 {
			break
		}
	}
	d.recvBuf = d.recvBuf[:0]
}
