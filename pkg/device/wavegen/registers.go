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
)

// Settings bus addresses of the wavegen block

type RegAlias int

const (
	RegChCounter RegAlias = iota
	RegChTuningCoef
	RegChFreqOffset
	RegAwgCtrlWord
	RegPrfInt
	RegPrfFrac
	RegAdcSample
	RegRadarPolicy
	RegRadarCommand
	RegRadarTimeHi
	RegRadarTimeLo
	RegRadarClearCmds
	RegAwgReload
	RegAwgReloadLast
	RegAliasLimit
)

var RegMap = map[RegAlias]uint32{
	RegChCounter:      200,
	RegChTuningCoef:   201,
	RegChFreqOffset:   202,
	RegAwgCtrlWord:    203,
	RegPrfInt:         204,
	RegPrfFrac:        205,
	RegAdcSample:      206,
	RegRadarPolicy:    207,
	RegRadarCommand:   208,
	RegRadarTimeHi:    209,
	RegRadarTimeLo:    210, // latches command word and TIME_HI
	RegRadarClearCmds: 211,
	RegAwgReload:      212,
	RegAwgReloadLast:  213, // last word of a waveform fragment
}

var regNames = map[RegAlias]string{
	RegChCounter:      "CH_COUNTER",
	RegChTuningCoef:   "CH_TUNING_COEF",
	RegChFreqOffset:   "CH_FREQ_OFFSET",
	RegAwgCtrlWord:    "AWG_CTRL_WORD",
	RegPrfInt:         "PRF_INT",
	RegPrfFrac:        "PRF_FRAC",
	RegAdcSample:      "ADC_SAMPLE",
	RegRadarPolicy:    "RADAR_POLICY",
	RegRadarCommand:   "RADAR_COMMAND",
	RegRadarTimeHi:    "RADAR_TIME_HI",
	RegRadarTimeLo:    "RADAR_TIME_LO",
	RegRadarClearCmds: "RADAR_CLEAR_CMDS",
	RegAwgReload:      "AWG_RELOAD",
	RegAwgReloadLast:  "AWG_RELOAD_LAST",
}

func (r RegAlias) String() string {
	if name, ok := regNames[r]; ok {
		return name
	}
	return fmt.Sprintf("RegAlias(%d)", int(r))
}

// Addr returns the settings bus address of the register
func (r RegAlias) Addr() uint32 {
	return RegMap[r]
}

// RegName returns the symbolic name of a settings bus address
func RegName(addr uint32) string {
	for alias, a := range RegMap {
		if a == addr {
			return alias.String()
		}
	}
	return fmt.Sprintf("0x%x", addr)
}

// User readback registers

type RbAlias int

const (
	RbAwgLen RbAlias = iota
	RbAdcLen
	RbAwgCtrl
	RbAwgPrf
	RbAwgPolicy
	RbAwgState
	RbAliasLimit
)

var RbMap = map[RbAlias]uint32{
	RbAwgLen:    5,
	RbAdcLen:    6,
	RbAwgCtrl:   7,
	RbAwgPrf:    8,
	RbAwgPolicy: 9,
	RbAwgState:  10,
}

var rbNames = map[RbAlias]string{
	RbAwgLen:    "RB_AWG_LEN",
	RbAdcLen:    "RB_ADC_LEN",
	RbAwgCtrl:   "RB_AWG_CTRL",
	RbAwgPrf:    "RB_AWG_PRF",
	RbAwgPolicy: "RB_AWG_POLICY",
	RbAwgState:  "RB_AWG_STATE",
}

func (r RbAlias) String() string {
	if name, ok := rbNames[r]; ok {
		return name
	}
	return fmt.Sprintf("RbAlias(%d)", int(r))
}

// Addr returns the readback index of the register
func (r RbAlias) Addr() uint32 {
	return RbMap[r]
}

// Constant settings values
const (
	CtrlWordSelChirp uint32 = 0x00000010
	CtrlWordSelAwg   uint32 = 0x00000310

	// source select field of the control word, bits [9:8]
	CtrlWordSrcShift        = 8
	CtrlWordSrcMask  uint32 = 0x3

	RadarPolicyAuto   uint32 = 0
	RadarPolicyManual uint32 = 1

	ClearCmdsValue uint32 = 1
)

// Stream command word bits
const (
	CmdBitNow       uint32 = 1 << 31
	CmdBitChain     uint32 = 1 << 30
	CmdBitReload    uint32 = 1 << 29
	CmdBitStop      uint32 = 1 << 28
	CmdNumSampsMask uint32 = 0x0FFFFFFF

	// TIME_HI value of an immediate pulse
	PulseNowTimeHi uint32 = 0x80000000
)

// WaveformWriteCmd is the command tag of every waveform upload header
const WaveformWriteCmd uint16 = 0x5744
