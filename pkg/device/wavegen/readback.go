/*
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

     https://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

package wavegen

import (
	"fmt"

	"jinr.ru/greenlab/go-wavegen/pkg/device/ifc"
)

const (
	SrcAwg       = "AWG"
	SrcChirp     = "CHIRP"
	PolicyAuto   = "AUTO"
	PolicyManual = "MANUAL"
)

// DecodeSrc names the signal source selected by a control word
func DecodeSrc(ctrlWord uint32) string {
	src := (ctrlWord >> CtrlWordSrcShift) & CtrlWordSrcMask
	switch {
	case src == CtrlWordSrcMask:
		return SrcAwg
	// ^src never equals a 2 bit mask, chirp patterns end up as UNKNOWN
	case CtrlWordSrcMask == ^src:
		return SrcChirp
	default:
		return fmt.Sprintf("UNKNOWN:%d, defaulting to %s", src, SrcChirp)
	}
}

// DecodePolicy names a radar policy word
func DecodePolicy(policy uint32) string {
	switch policy {
	case RadarPolicyAuto:
		return PolicyAuto
	case RadarPolicyManual:
		return PolicyManual
	default:
		return fmt.Sprintf("UNKNOWN:%d, defaulting to %s", policy, PolicyManual)
	}
}

func (d *Device) GetCtrlWord() (uint32, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	value, err := d.readChecked(RbAwgCtrl)
	return uint32(value), err
}

func (d *Device) GetSrc() (string, error) {
	word, err := d.GetCtrlWord()
	if err != nil {
		return "", err
	}
	return DecodeSrc(word), nil
}

// GetPolicyWord returns the raw policy. Zero is a valid policy and is not checked.
func (d *Device) GetPolicyWord() (uint32, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	value, err := d.read(RbAwgPolicy)
	return uint32(value), err
}

func (d *Device) GetPolicy() (string, error) {
	policy, err := d.GetPolicyWord()
	if err != nil {
		return "", err
	}
	return DecodePolicy(policy), nil
}

func (d *Device) GetWaveformLen() (uint32, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	value, err := d.readChecked(RbAwgLen)
	return uint32(value), err
}

func (d *Device) GetNumAdcSamples() (uint32, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	value, err := d.readChecked(RbAdcLen)
	return uint32(value), err
}

// GetRxLen returns ADC sample count plus waveform length
func (d *Device) GetRxLen() (uint32, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.rxLen()
}

func (d *Device) rxLen() (uint32, error) {
	adc, err := d.readChecked(RbAdcLen)
	if err != nil {
		return 0, err
	}
	wfrm, err := d.readChecked(RbAwgLen)
	if err != nil {
		return 0, err
	}
	rxLen := uint32(adc) + uint32(wfrm)
	// the sum is checked against the length register, it has no readback of its own
	if err := d.validate(RbAwgLen, uint64(rxLen)); err != nil {
		return rxLen, err
	}
	return rxLen, nil
}

func (d *Device) GetPrfCount() (uint64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.readChecked(RbAwgPrf)
}

// GetState returns the opaque device state bitfield
func (d *Device) GetState() (uint64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.readChecked(RbAwgState)
}

// GetStatus reads every readback register once
func (d *Device) GetStatus() (*ifc.Status, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	ctrl, err := d.readChecked(RbAwgCtrl)
	if err != nil {
		return nil, err
	}
	policy, err := d.read(RbAwgPolicy)
	if err != nil {
		return nil, err
	}
	wfrm, err := d.readChecked(RbAwgLen)
	if err != nil {
		return nil, err
	}
	adc, err := d.readChecked(RbAdcLen)
	if err != nil {
		return nil, err
	}
	prf, err := d.readChecked(RbAwgPrf)
	if err != nil {
		return nil, err
	}
	state, err := d.readChecked(RbAwgState)
	if err != nil {
		return nil, err
	}
	return &ifc.Status{
		Source:      DecodeSrc(uint32(ctrl)),
		Policy:      DecodePolicy(uint32(policy)),
		CtrlWord:    uint32(ctrl),
		PolicyWord:  uint32(policy),
		WaveformLen: uint32(wfrm),
		AdcSamples:  uint32(adc),
		RxLen:       uint32(adc) + uint32(wfrm),
		PrfCount:    prf,
		State:       state,
	}, nil
}
