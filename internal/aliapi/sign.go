package aliapi

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// 客户端应用标识，参与设备签名
const appID = "5dde4e1bdf9e4966b387ba58f4b3fdc3"

// deviceKey 由 device_id 派生出稳定的 ed25519 密钥对
func deviceKey(deviceID string) ed25519.PrivateKey {
	seed := sha256.Sum256([]byte("alipan-client:" + deviceID))
	return ed25519.NewKeyFromSeed(seed[:])
}

// devicePubKey 返回设备公钥的十六进制串（创建会话时上报）
func devicePubKey(deviceID string) string {
	key := deviceKey(deviceID)
	return "04" + hex.EncodeToString(key.Public().(ed25519.PublicKey))
}

// deviceSignature 计算请求签名：对 appId:deviceId:userId:nonce 做 ed25519 签名
func deviceSignature(deviceID, userID string, nonce int) string {
	data := fmt.Sprintf("%s:%s:%s:%d", appID, deviceID, userID, nonce)
	sig := ed25519.Sign(deviceKey(deviceID), []byte(data))
	return hex.EncodeToString(sig) + "01"
}
