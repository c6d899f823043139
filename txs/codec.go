// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package txs

import (
	"errors"
	"math"

	"github.com/luxfi/codec"
	"github.com/luxfi/codec/linearcodec"
)

const CodecVersion = 0

var Codec codec.Manager

func init() {
	Codec = codec.NewManager(math.MaxInt32)
	lc := linearcodec.NewDefault()

	err := errors.Join(
		lc.RegisterType(&CreateAssetTx{}),
		lc.RegisterType(&AllowCreateAssetTx{}),
		lc.RegisterType(&UpdateAssetTx{}),
		lc.RegisterType(&UpdateAssetV2Tx{}),
		lc.RegisterType(&UpdateBitassetTx{}),
		lc.RegisterType(&UpdateFeedProducersTx{}),
		lc.RegisterType(&IssueTx{}),
		lc.RegisterType(&BonusTx{}),
		lc.RegisterType(&ReferralIssueTx{}),
		lc.RegisterType(&DailyIssueTx{}),
		lc.RegisterType(&ReserveTx{}),
		lc.RegisterType(&FundFeePoolTx{}),
		lc.RegisterType(&IndirectFundFeePoolTx{}),
		lc.RegisterType(&ClaimFeesTx{}),
		lc.RegisterType(&PublishFeedTx{}),
		lc.RegisterType(&GlobalSettleTx{}),
		lc.RegisterType(&SettleTx{}),
		Codec.RegisterCodec(CodecVersion, lc),
	)
	if err != nil {
		panic(err)
	}
}
