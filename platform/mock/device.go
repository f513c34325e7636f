// Package mock provides an in-process TROPIC01 simulator: a Device that
// understands the L3 command set and keeps the slot/counter/config state
// those commands mutate, and a Platform that exposes it through the same
// raw byte-transfer contract a real SPI part would, so the whole stack
// (l1 through the root command API) can be exercised without hardware.
package mock

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"math/big"

	"github.com/vpilat/libtropic-go/cryptocap"
	"github.com/vpilat/libtropic-go/cryptocap/stdcrypto"
	"github.com/vpilat/libtropic-go/l2"
	"github.com/vpilat/libtropic-go/proto"
)

const numRMemSlots = 512
const numECCSlots = 32
const numPairingSlots = 4
const numMacDestroySlots = 128

type eccSlot struct {
	curve byte
	// ed25519: priv is the 32-byte seed, pub the 32-byte public key.
	// P256: priv is the scalar d (32 bytes), pub is X||Y (64 bytes).
	priv []byte
	pub  []byte
}

// Device is a stateful TROPIC01 simulator. Construct one with NewDevice
// and wrap it in a Platform to drive it over the l1.Platform contract.
type Device struct {
	Provider cryptocap.Provider

	FirmwareVersion [4]byte
	Stpriv, Stpub   [32]byte

	pairingKeys  [numPairingSlots]*[32]byte
	invalidated  [numPairingSlots]bool
	rConfig      map[uint16]uint32
	iConfig      map[uint16]uint32
	rMem         [numRMemSlots][]byte
	eccSlots     [numECCSlots]*eccSlot
	mcounterInit map[uint16]bool
	mcounter     map[uint16]uint32
	macSlots     map[uint16][32]byte

	// HardwareFailOn injects a ResultHardwareFail response the next time
	// the named command id is dispatched, then clears itself — spec.md
	// §8 scenario E.
	HardwareFailOn byte

	sessionActive bool
	encIV, decIV  [12]byte
	enc           cryptocap.AEADEncryptor
	dec           cryptocap.AEADDecryptor

	incoming []byte
	outgoing []byte
	outOff   int
}

// NewDevice returns a freshly provisioned simulator: a random static
// keypair, firmware version 2.0.0, and all slots empty.
func NewDevice() *Device {
	p := stdcrypto.New()
	var stpriv [32]byte
	_, _ = rand.Read(stpriv[:])
	stpub, _ := p.X25519Base(stpriv)
	return &Device{
		Provider:        p,
		FirmwareVersion: [4]byte{0, 0, 0, 2},
		Stpriv:          stpriv,
		Stpub:           stpub,
		rConfig:         map[uint16]uint32{},
		iConfig:         map[uint16]uint32{},
		mcounterInit:    map[uint16]bool{},
		mcounter:        map[uint16]uint32{},
		macSlots:        map[uint16][32]byte{},
	}
}

// Handle dispatches one L2 request and returns the status/payload to
// frame into the response.
func (d *Device) Handle(reqID byte, payload []byte) (status byte, resp []byte) {
	switch reqID {
	case l2.ReqGetInfo:
		return d.handleGetInfo(payload)
	case l2.ReqHandshake:
		return d.handleHandshake(payload)
	case l2.ReqEncryptedCmd, l2.ReqEncryptedCmdNext:
		return d.handleEncryptedChunk(reqID, payload)
	case l2.ReqEncryptedCmdRes, l2.ReqEncryptedCmdResNext:
		return d.pullResponseChunk()
	case l2.ReqEncryptedSessionAbort:
		d.invalidateSession()
		return l2.StatusRequestOK, nil
	case l2.ReqStartup:
		return l2.StatusRequestOK, nil
	case l2.ReqSleep:
		d.invalidateSession()
		return l2.StatusSleepOK, nil
	case l2.ReqResend:
		return l2.StatusGenErr, nil
	default:
		return l2.StatusUnknownReq, nil
	}
}

func (d *Device) invalidateSession() {
	d.sessionActive = false
	d.encIV, d.decIV = [12]byte{}, [12]byte{}
	d.enc, d.dec = nil, nil
	d.incoming, d.outgoing = nil, nil
	d.outOff = 0
}

// Get_Info object identifiers, internal to this simulator.
const (
	infoCertStore byte = iota
	infoChipID
	infoRiscvFwVersion
	infoSpectFwVersion
	infoFwBankHeader
)

func (d *Device) handleGetInfo(payload []byte) (byte, []byte) {
	if len(payload) < 1 {
		return l2.StatusGenErr, nil
	}
	object := payload[0]
	switch object {
	case infoRiscvFwVersion, infoSpectFwVersion:
		return l2.StatusRequestOK, append([]byte{}, d.FirmwareVersion[:]...)
	case infoChipID:
		id := make([]byte, 128)
		copy(id, []byte("tropic01-mock-chip-id"))
		return l2.StatusRequestOK, id
	case infoFwBankHeader:
		hdr := make([]byte, 20)
		copy(hdr, d.FirmwareVersion[:])
		return l2.StatusRequestOK, hdr
	case infoCertStore:
		// A single synthetic certificate carrying Stpub at a fixed
		// offset; real chain parsing is explicitly out of scope.
		cert := make([]byte, 64)
		copy(cert[16:48], d.Stpub[:])
		return l2.StatusRequestOK, cert
	default:
		return l2.StatusGenErr, nil
	}
}

func (d *Device) handleHandshake(payload []byte) (byte, []byte) {
	if len(payload) != 33 {
		return l2.StatusGenErr, nil
	}
	var ehpub [32]byte
	copy(ehpub[:], payload[:32])
	index := payload[32]

	shipub, ok := d.lookupPairingPub(index)
	if !ok {
		return l2.StatusHskErr, nil
	}

	name := protocolNamePadded()
	h := sha256Chain(d.Provider, name[:])
	h = sha256Chain(d.Provider, h[:], shipub[:])
	h = sha256Chain(d.Provider, h[:], d.Stpub[:])

	var etpriv [32]byte
	_, _ = rand.Read(etpriv[:])
	etpub, err := d.Provider.X25519Base(etpriv)
	if err != nil {
		return l2.StatusHskErr, nil
	}

	h = sha256Chain(d.Provider, h[:], ehpub[:])
	h = sha256Chain(d.Provider, h[:], []byte{index})
	h = sha256Chain(d.Provider, h[:], etpub[:])

	ck := protocolNamePadded()
	dh1, err := d.Provider.X25519(etpriv, ehpub)
	if err != nil {
		return l2.StatusHskErr, nil
	}
	ck, _, err = d.Provider.HKDF(ck[:], dh1[:], 1)
	if err != nil {
		return l2.StatusHskErr, nil
	}

	dh2, err := d.Provider.X25519(etpriv, *shipub)
	if err != nil {
		return l2.StatusHskErr, nil
	}
	ck, _, err = d.Provider.HKDF(ck[:], dh2[:], 1)
	if err != nil {
		return l2.StatusHskErr, nil
	}

	dh3, err := d.Provider.X25519(d.Stpriv, ehpub)
	if err != nil {
		return l2.StatusHskErr, nil
	}
	var kauth [32]byte
	ck, kauth, err = d.Provider.HKDF(ck[:], dh3[:], 2)
	if err != nil {
		return l2.StatusHskErr, nil
	}

	kcmd, kres, err := d.Provider.HKDF(ck[:], nil, 2)
	if err != nil {
		return l2.StatusHskErr, nil
	}

	authEnc, err := d.Provider.AESGCMEncryptInit(kauth[:])
	if err != nil {
		return l2.StatusHskErr, nil
	}
	tag, err := authEnc.Seal([12]byte{}, h[:], nil)
	if err != nil {
		return l2.StatusHskErr, nil
	}

	enc, err := d.Provider.AESGCMEncryptInit(kres[:]) // device encrypts responses with kres
	if err != nil {
		return l2.StatusHskErr, nil
	}
	dec, err := d.Provider.AESGCMDecryptInit(kcmd[:]) // device decrypts requests with kcmd
	if err != nil {
		return l2.StatusHskErr, nil
	}
	d.enc, d.dec = enc, dec
	d.encIV, d.decIV = [12]byte{}, [12]byte{}
	d.sessionActive = true

	return l2.StatusRequestOK, append(append([]byte{}, etpub[:]...), tag...)
}

func (d *Device) lookupPairingPub(index byte) (*[32]byte, bool) {
	if int(index) >= numPairingSlots {
		return nil, false
	}
	if d.invalidated[index] || d.pairingKeys[index] == nil {
		return nil, false
	}
	return d.pairingKeys[index], true
}

func (d *Device) handleEncryptedChunk(reqID byte, payload []byte) (byte, []byte) {
	if !d.sessionActive {
		return l2.StatusNoSession, nil
	}
	if reqID == l2.ReqEncryptedCmd {
		d.incoming = d.incoming[:0]
	}
	d.incoming = append(d.incoming, payload...)
	if len(d.incoming) < 2 {
		return l2.StatusRequestCont, nil
	}
	size := int(d.incoming[0]) | int(d.incoming[1])<<8
	total := 2 + size + 16
	switch {
	case len(d.incoming) < total:
		return l2.StatusRequestCont, nil
	case len(d.incoming) > total:
		d.invalidateSession()
		return l2.StatusGenErr, nil
	}

	ctAndTag := d.incoming[2:]
	plaintext, err := d.dec.Open(d.decIV, nil, ctAndTag)
	if err != nil {
		d.invalidateSession()
		return l2.StatusTagErr, nil
	}
	incIV(&d.decIV)

	if len(plaintext) < 1 {
		d.invalidateSession()
		return l2.StatusGenErr, nil
	}
	resultByte, outArgs := d.dispatch(plaintext[0], plaintext[1:])

	respPlain := append([]byte{resultByte}, outArgs...)
	ct, err := d.enc.Seal(d.encIV, nil, respPlain)
	if err != nil {
		d.invalidateSession()
		return l2.StatusGenErr, nil
	}
	incIV(&d.encIV)

	out := make([]byte, 2, 2+len(ct))
	out[0] = byte(len(respPlain))
	out[1] = byte(len(respPlain) >> 8)
	out = append(out, ct...)
	d.outgoing = out
	d.outOff = 0

	return l2.StatusRequestOK, nil
}

func (d *Device) pullResponseChunk() (byte, []byte) {
	if !d.sessionActive || d.outgoing == nil {
		return l2.StatusNoSession, nil
	}
	remaining := d.outgoing[d.outOff:]
	chunkLen := len(remaining)
	if chunkLen > 252 {
		chunkLen = 252
	}
	chunk := remaining[:chunkLen]
	d.outOff += chunkLen
	if d.outOff >= len(d.outgoing) {
		d.outgoing = nil
		d.outOff = 0
		return l2.StatusResultOK, chunk
	}
	return l2.StatusResultCont, chunk
}

func incIV(iv *[12]byte) {
	for i := range iv {
		iv[i]++
		if iv[i] != 0 {
			return
		}
	}
}

const protocolNameStr = "Noise_KK1_25519_AESGCM_SHA256"

func protocolNamePadded() [32]byte {
	var b [32]byte
	copy(b[:], protocolNameStr)
	return b
}

func sha256Chain(p cryptocap.Provider, chunks ...[]byte) [32]byte {
	h := p.NewSHA256()
	for _, c := range chunks {
		h.Write(c)
	}
	return h.Sum()
}

// dispatch executes one decrypted command and returns the device result
// byte plus its response arguments (spec.md §4.7).
func (d *Device) dispatch(cmd byte, args []byte) (byte, []byte) {
	if d.HardwareFailOn == cmd {
		d.HardwareFailOn = 0
		return proto.ResultHardwareFail, nil
	}
	switch cmd {
	case proto.CmdPing:
		return proto.ResultOK, args
	case proto.CmdPairingKeyWrite:
		return d.pairingKeyWrite(args)
	case proto.CmdPairingKeyRead:
		return d.pairingKeyRead(args)
	case proto.CmdPairingKeyInvalidate:
		return d.pairingKeyInvalidate(args)
	case proto.CmdRConfigWrite:
		return d.rConfigWrite(args)
	case proto.CmdRConfigRead:
		return d.rConfigRead(args)
	case proto.CmdRConfigErase:
		d.rConfig = map[uint16]uint32{}
		return proto.ResultOK, nil
	case proto.CmdIConfigWrite:
		return d.iConfigWrite(args)
	case proto.CmdIConfigRead:
		return d.iConfigRead(args)
	case proto.CmdRMemDataWrite:
		return d.rMemWrite(args)
	case proto.CmdRMemDataRead:
		return d.rMemRead(args)
	case proto.CmdRMemDataErase:
		return d.rMemErase(args)
	case proto.CmdRandomValueGet:
		return d.randomValueGet(args)
	case proto.CmdECCKeyGenerate:
		return d.eccKeyGenerate(args)
	case proto.CmdECCKeyStore:
		return d.eccKeyStore(args)
	case proto.CmdECCKeyRead:
		return d.eccKeyRead(args)
	case proto.CmdECCKeyErase:
		return d.eccKeyErase(args)
	case proto.CmdECDSASign:
		return d.ecdsaSign(args)
	case proto.CmdEdDSASign:
		return d.eddsaSign(args)
	case proto.CmdMCounterInit:
		return d.mcounterInitCmd(args)
	case proto.CmdMCounterUpdate:
		return d.mcounterUpdate(args)
	case proto.CmdMCounterGet:
		return d.mcounterGet(args)
	case proto.CmdMACAndDestroy:
		return d.macAndDestroy(args)
	default:
		return proto.ResultInvalidCmd, nil
	}
}

func u16(b []byte) uint16 { return uint16(b[0]) | uint16(b[1])<<8 }

func (d *Device) pairingKeyWrite(args []byte) (byte, []byte) {
	if len(args) < 4+32 {
		return proto.ResultFail, nil
	}
	slot := u16(args)
	if slot >= numPairingSlots || d.invalidated[slot] {
		return proto.ResultFail, nil
	}
	var key [32]byte
	copy(key[:], args[4:36])
	d.pairingKeys[slot] = &key
	return proto.ResultOK, nil
}

func (d *Device) pairingKeyRead(args []byte) (byte, []byte) {
	if len(args) < 2 {
		return proto.ResultFail, nil
	}
	slot := u16(args)
	if slot >= numPairingSlots || d.invalidated[slot] {
		return proto.ResultSlotInvalid, nil
	}
	if d.pairingKeys[slot] == nil {
		return proto.ResultSlotEmpty, nil
	}
	out := append([]byte{0, 0, 0}, d.pairingKeys[slot][:]...)
	return proto.ResultOK, out
}

func (d *Device) pairingKeyInvalidate(args []byte) (byte, []byte) {
	if len(args) < 2 {
		return proto.ResultFail, nil
	}
	slot := u16(args)
	if slot >= numPairingSlots {
		return proto.ResultFail, nil
	}
	d.invalidated[slot] = true
	d.pairingKeys[slot] = nil
	return proto.ResultOK, nil
}

func (d *Device) rConfigWrite(args []byte) (byte, []byte) {
	if len(args) < 8 {
		return proto.ResultFail, nil
	}
	addr := u16(args)
	value := uint32(args[4]) | uint32(args[5])<<8 | uint32(args[6])<<16 | uint32(args[7])<<24
	d.rConfig[addr] = value
	return proto.ResultOK, nil
}

func (d *Device) rConfigRead(args []byte) (byte, []byte) {
	if len(args) < 2 {
		return proto.ResultFail, nil
	}
	addr := u16(args)
	v := d.rConfig[addr]
	return proto.ResultOK, append([]byte{0, 0, 0}, le32(v)...)
}

func (d *Device) iConfigWrite(args []byte) (byte, []byte) {
	if len(args) < 3 {
		return proto.ResultFail, nil
	}
	addr := u16(args)
	bit := args[2]
	if bit > 31 {
		return proto.ResultFail, nil
	}
	d.iConfig[addr] |= 1 << uint(bit)
	return proto.ResultOK, nil
}

func (d *Device) iConfigRead(args []byte) (byte, []byte) {
	if len(args) < 2 {
		return proto.ResultFail, nil
	}
	addr := u16(args)
	return proto.ResultOK, append([]byte{0, 0, 0}, le32(d.iConfig[addr])...)
}

func le32(v uint32) []byte {
	return []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
}

func (d *Device) rMemWrite(args []byte) (byte, []byte) {
	if len(args) < 5 {
		return proto.ResultFail, nil
	}
	slot := u16(args)
	data := args[4:]
	if int(slot) >= numRMemSlots {
		return proto.ResultFail, nil
	}
	if d.rMem[slot] != nil {
		return proto.ResultSlotNotEmpty, nil
	}
	d.rMem[slot] = append([]byte{}, data...)
	return proto.ResultOK, nil
}

func (d *Device) rMemRead(args []byte) (byte, []byte) {
	if len(args) < 2 {
		return proto.ResultFail, nil
	}
	slot := u16(args)
	if int(slot) >= numRMemSlots || d.rMem[slot] == nil {
		return proto.ResultSlotEmpty, nil
	}
	return proto.ResultOK, append([]byte{0, 0, 0}, d.rMem[slot]...)
}

func (d *Device) rMemErase(args []byte) (byte, []byte) {
	if len(args) < 2 {
		return proto.ResultFail, nil
	}
	slot := u16(args)
	if int(slot) >= numRMemSlots {
		return proto.ResultFail, nil
	}
	d.rMem[slot] = nil
	return proto.ResultOK, nil
}

func (d *Device) randomValueGet(args []byte) (byte, []byte) {
	if len(args) < 1 {
		return proto.ResultFail, nil
	}
	n := int(args[0])
	buf := make([]byte, n)
	_, _ = rand.Read(buf)
	return proto.ResultOK, append([]byte{0, 0, 0}, buf...)
}

func (d *Device) eccKeyGenerate(args []byte) (byte, []byte) {
	if len(args) < 3 {
		return proto.ResultFail, nil
	}
	slot, curve := u16(args), args[2]
	if int(slot) >= numECCSlots {
		return proto.ResultFail, nil
	}
	switch curve {
	case proto.CurveEd25519:
		pub, priv, err := ed25519.GenerateKey(rand.Reader)
		if err != nil {
			return proto.ResultFail, nil
		}
		d.eccSlots[slot] = &eccSlot{curve: curve, priv: priv.Seed(), pub: pub}
	case proto.CurveP256:
		priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
		if err != nil {
			return proto.ResultFail, nil
		}
		d.eccSlots[slot] = &eccSlot{curve: curve, priv: priv.D.Bytes(), pub: marshalP256Pub(priv)}
	default:
		return proto.ResultFail, nil
	}
	return proto.ResultOK, nil
}

func marshalP256Pub(priv *ecdsa.PrivateKey) []byte {
	out := make([]byte, 64)
	priv.X.FillBytes(out[:32])
	priv.Y.FillBytes(out[32:])
	return out
}

func (d *Device) eccKeyStore(args []byte) (byte, []byte) {
	if len(args) < 3+12+32 {
		return proto.ResultFail, nil
	}
	slot, curve := u16(args), args[2]
	k := args[15:47]
	if int(slot) >= numECCSlots {
		return proto.ResultFail, nil
	}
	switch curve {
	case proto.CurveEd25519:
		priv := ed25519.NewKeyFromSeed(k)
		pub := priv.Public().(ed25519.PublicKey)
		d.eccSlots[slot] = &eccSlot{curve: curve, priv: append([]byte{}, k...), pub: pub}
	case proto.CurveP256:
		d2 := new(big.Int).SetBytes(k)
		x, y := elliptic.P256().ScalarBaseMult(d2.Bytes())
		pub := make([]byte, 64)
		x.FillBytes(pub[:32])
		y.FillBytes(pub[32:])
		d.eccSlots[slot] = &eccSlot{curve: curve, priv: append([]byte{}, k...), pub: pub}
	default:
		return proto.ResultFail, nil
	}
	return proto.ResultOK, nil
}

func (d *Device) eccKeyRead(args []byte) (byte, []byte) {
	if len(args) < 2 {
		return proto.ResultFail, nil
	}
	slot := u16(args)
	if int(slot) >= numECCSlots || d.eccSlots[slot] == nil {
		return proto.ResultInvalidKey, nil
	}
	s := d.eccSlots[slot]
	out := append([]byte{s.curve, 0}, make([]byte, 13)...)
	out = append(out, s.pub...)
	return proto.ResultOK, out
}

func (d *Device) eccKeyErase(args []byte) (byte, []byte) {
	if len(args) < 2 {
		return proto.ResultFail, nil
	}
	slot := u16(args)
	if int(slot) >= numECCSlots {
		return proto.ResultFail, nil
	}
	d.eccSlots[slot] = nil
	return proto.ResultOK, nil
}

func (d *Device) ecdsaSign(args []byte) (byte, []byte) {
	if len(args) < 15+32 {
		return proto.ResultFail, nil
	}
	slot := u16(args)
	hash := args[15:47]
	if int(slot) >= numECCSlots || d.eccSlots[slot] == nil || d.eccSlots[slot].curve != proto.CurveP256 {
		return proto.ResultInvalidKey, nil
	}
	s := d.eccSlots[slot]
	priv := new(ecdsa.PrivateKey)
	priv.PublicKey.Curve = elliptic.P256()
	priv.D = new(big.Int).SetBytes(s.priv)
	priv.PublicKey.X, priv.PublicKey.Y = elliptic.P256().ScalarBaseMult(priv.D.Bytes())
	r, sig, err := ecdsa.Sign(rand.Reader, priv, hash)
	if err != nil {
		return proto.ResultFail, nil
	}
	out := make([]byte, 15, 15+64)
	rb, sb := make([]byte, 32), make([]byte, 32)
	r.FillBytes(rb)
	sig.FillBytes(sb)
	out = append(out, rb...)
	out = append(out, sb...)
	return proto.ResultOK, out
}

func (d *Device) eddsaSign(args []byte) (byte, []byte) {
	if len(args) < 15 {
		return proto.ResultFail, nil
	}
	slot := u16(args)
	msg := args[15:]
	if int(slot) >= numECCSlots || d.eccSlots[slot] == nil || d.eccSlots[slot].curve != proto.CurveEd25519 {
		return proto.ResultInvalidKey, nil
	}
	priv := ed25519.NewKeyFromSeed(d.eccSlots[slot].priv)
	sig := ed25519.Sign(priv, msg)
	out := make([]byte, 15, 15+64)
	out = append(out, sig...)
	return proto.ResultOK, out
}

func (d *Device) mcounterInitCmd(args []byte) (byte, []byte) {
	if len(args) < 8 {
		return proto.ResultFail, nil
	}
	idx := u16(args)
	value := uint32(args[4]) | uint32(args[5])<<8 | uint32(args[6])<<16 | uint32(args[7])<<24
	d.mcounterInit[idx] = true
	d.mcounter[idx] = value
	return proto.ResultOK, nil
}

func (d *Device) mcounterUpdate(args []byte) (byte, []byte) {
	if len(args) < 2 {
		return proto.ResultFail, nil
	}
	idx := u16(args)
	if !d.mcounterInit[idx] || d.mcounter[idx] == 0 {
		return proto.ResultUpdateErr, nil
	}
	d.mcounter[idx]--
	return proto.ResultOK, nil
}

func (d *Device) mcounterGet(args []byte) (byte, []byte) {
	if len(args) < 2 {
		return proto.ResultFail, nil
	}
	idx := u16(args)
	if !d.mcounterInit[idx] {
		return proto.ResultUpdateErr, nil
	}
	return proto.ResultOK, append([]byte{0, 0, 0}, le32(d.mcounter[idx])...)
}

// macAndDestroy is a simplified destructible-slot PIN scheme: each slot
// holds an independent 32-byte key; data_out is HMAC-SHA256(slot_key,
// data_in), and reading a slot consumes it — a fresh attempt with the
// same slot index after a read always reports SlotEmpty. The full
// destructible-slot derivation chain is out of scope for the simulator.
func (d *Device) macAndDestroy(args []byte) (byte, []byte) {
	if len(args) < 4+32 {
		return proto.ResultFail, nil
	}
	slot := u16(args)
	dataIn := args[4:36]
	if int(slot) >= numMacDestroySlots {
		return proto.ResultFail, nil
	}
	key, ok := d.macSlots[slot]
	if !ok {
		return proto.ResultSlotEmpty, nil
	}
	delete(d.macSlots, slot)
	mac := hmac.New(sha256.New, key[:])
	mac.Write(dataIn)
	out := append([]byte{0, 0, 0}, mac.Sum(nil)...)
	return proto.ResultOK, out
}

// ProvisionPairingKey installs a pairing-key public half directly
// (bypassing Pairing_Key_Write), letting tests pre-provision the slot a
// handshake will authenticate against.
func (d *Device) ProvisionPairingKey(slot int, pub [32]byte) {
	d.pairingKeys[slot] = &pub
}

// ProvisionMacSlot seeds a MAC_And_Destroy slot with a key, for tests that
// exercise the PIN/MAC flow directly.
func (d *Device) ProvisionMacSlot(slot uint16, key [32]byte) {
	d.macSlots[slot] = key
}
