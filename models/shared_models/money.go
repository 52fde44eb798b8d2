package shared_models

// Amounts are carried as int64 minor units (paise/cents) and fee rates as
// basis points, so the settlement splits hold exactly with no float drift.

// FeeFromBps computes a fee on amount at the given basis-point rate, rounding
// half up to the nearest minor unit.
func FeeFromBps(amount, bps int64) int64 {
	if amount <= 0 || bps <= 0 {
		return 0
	}
	return (amount*bps + 5000) / 10000
}

// SplitAmount divides a charged amount into the platform fee and the provider
// share. The two parts always sum to amount exactly.
func SplitAmount(amount, platformFeeBps int64) (platformFee, providerShare int64) {
	platformFee = FeeFromBps(amount, platformFeeBps)
	providerShare = amount - platformFee
	return platformFee, providerShare
}
