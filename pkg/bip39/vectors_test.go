package bip39

import "encoding/hex"

// vector is a BIP-39 reference test vector.
type vector struct {
	entropy    string
	mnemonic   string
	passphrase string
	seed       string
}

// referenceVectors are taken from the BIP-39 reference test suite.
var referenceVectors = []vector{
	{
		entropy:    "00000000000000000000000000000000",
		mnemonic:   "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about",
		passphrase: "",
		seed:       "5eb00bbddcf069084889a8ab9155568165f5c453ccb85e70811aaed6f6da5fc19a5ac40b389cd370d086206dec8aa6c43daea6690f20ad3d8d48b2d2ce9e38e4",
	},
	{
		entropy:    "00000000000000000000000000000000",
		mnemonic:   "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about",
		passphrase: "TREZOR",
		seed:       "c55257c360c07c72029aebc1b53c05ed0362ada38ead3e3e9efa3708e53495531f09a6987599d18264c1e1c92f2cf141630c7a3c4ab7c81b2f001698e7463b04",
	},
	{
		entropy:    "7f7f7f7f7f7f7f7f7f7f7f7f7f7f7f7f",
		mnemonic:   "legal winner thank year wave sausage worth useful legal winner thank yellow",
		passphrase: "TREZOR",
		seed:       "2e8905819b8723fe2c1d161860e5ee1830318dbf49a83bd451cfb8440c28bd6fa457fe1296106559a3c80937a1c1069be3a3a5bd381ee6260e8d9739fce1f607",
	},
	{
		entropy:    "80808080808080808080808080808080",
		mnemonic:   "letter advice cage absurd amount doctor acoustic avoid letter advice cage above",
		passphrase: "TREZOR",
		seed:       "d71de856f81a8acc65e6fc851a38d4d7ec216fd0796d0a6827a3ad6ed5511a30fa280f12eb2e47ed2ac03b5c462a0358d18d69fe4f985ec81778c1b370b652a8",
	},
	{
		entropy:    "ffffffffffffffffffffffffffffffff",
		mnemonic:   "zoo zoo zoo zoo zoo zoo zoo zoo zoo zoo zoo wrong",
		passphrase: "TREZOR",
		seed:       "ac27495480225222079d7be181583751e86f571027b0497b5b5d11218e0a8a13332572917f0f8e5a589620c6f15b11c61dee327651a14c34e18231052e48c069",
	},
	{
		entropy:    "0000000000000000000000000000000000000000000000000000000000000000",
		mnemonic:   "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon art",
		passphrase: "TREZOR",
		seed:       "bda85446c68413707090a52022edd26a1c9462295029f2e60cd7c4f2bbd3097170af7a4d73245cafa9c3cca8d561a7c3de6f5d4a10be8ed2a5e608d68f92fcc8",
	},
}

func mustHex(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return b
}
