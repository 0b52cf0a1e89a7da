package bike

import (
	"github.com/goccy/go-json"
	"github.com/skip2/go-qrcode"
)

const qrSize = 512

// QRPayload is what the sticker on a bike encodes. The app sends the decoded
// bikeId back as the qrCode when starting a rental.
type QRPayload struct {
	BikeID string `json:"bikeId"`
}

// QRCode renders the PNG sticker for a bike.
func QRCode(b Bike) ([]byte, error) {
	data, err := json.Marshal(QRPayload{BikeID: b.ID.String()})
	if err != nil {
		return nil, err
	}
	return qrcode.Encode(string(data), qrcode.Medium, qrSize)
}
