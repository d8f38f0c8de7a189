// Package auth 实现守护进程侧的认证子系统
//
// 流程：下发 20 字节随机挑战（AUTH TOKEN）；对端用私钥做
// RSA PKCS#1 v1.5 / SHA-1 签名（AUTH SIGNATURE），用已授权公钥验证；
// 验证不过时对端可出示公钥（AUTH RSAPUBLICKEY），交授权策略裁决，
// 接受的公钥进入缓存，之后的重连直接凭签名通过。
//
// 公钥采用 Android 专有的 RSA 公钥布局（小端模数加蒙哥马利参数）
// 的 base64 形式，后随 " user@host" 备注。
package auth
