package importer

// ChasePreset reads Chase checking exports:
//
//	Details,Posting Date,Description,Amount,Type,Balance,Check or Slip #
//	DEBIT,01/03/2025,GITHUB *PRO SUBSCRIPTION,-4.00,ACH_DEBIT,5196.00,
//
// Amounts are signed from the account holder's side, so a debit of -4.00
// is money leaving the bank account. The transaction is recorded against
// the counter account (DefaultAccount) with the bank as the offset, hence
// the inverted sign.
var ChasePreset = Preset{
	Name: "chase",
	Mapping: Mapping{
		Date:   "Posting Date",
		Amount: "Amount",
		Payee:  "Description",
		Note:   "Type",
	},
	DateFormat: "01/02/2006",
	Sign:       SignInverted,
}
