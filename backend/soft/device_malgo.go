//go:build cgo

package soft

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/gen2brain/malgo"
)

type malgoDevice struct {
	ctx    *malgo.AllocatedContext
	device *malgo.Device
}

func newMalgoDevice(mix *mixer, sampleRate int, period time.Duration) (device, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("initialize audio context: %w", err)
	}

	cfg := malgo.DefaultDeviceConfig(malgo.Playback)
	cfg.Playback.Format = malgo.FormatF32
	cfg.Playback.Channels = outputChannels
	cfg.SampleRate = uint32(sampleRate)
	cfg.PeriodSizeInMilliseconds = uint32(period.Milliseconds())

	var buf []float32
	onSendFrames := func(pOutputSample, _ []byte, framecount uint32) {
		n := int(framecount) * outputChannels
		if cap(buf) < n {
			buf = make([]float32, n)
		}
		buf = buf[:n]
		mix.ReadFloat32s(buf)
		for i, v := range buf {
			binary.LittleEndian.PutUint32(pOutputSample[i*4:], math.Float32bits(v))
		}
	}

	device, err := malgo.InitDevice(ctx.Context, cfg, malgo.DeviceCallbacks{Data: onSendFrames})
	if err != nil {
		_ = ctx.Uninit()
		ctx.Free()
		return nil, fmt.Errorf("initialize playback device: %w", err)
	}
	if err := device.Start(); err != nil {
		device.Uninit()
		_ = ctx.Uninit()
		ctx.Free()
		return nil, fmt.Errorf("start playback device: %w", err)
	}
	return &malgoDevice{ctx: ctx, device: device}, nil
}

func (d *malgoDevice) close() error {
	err := d.device.Stop()
	d.device.Uninit()
	if uerr := d.ctx.Uninit(); err == nil {
		err = uerr
	}
	d.ctx.Free()
	return err
}
