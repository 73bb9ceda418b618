package entities

import "time"

type ContentKeyType string

const (
	ContentKeyCommonEncryption     ContentKeyType = "CommonEncryption"
	ContentKeyCommonEncryptionCbcs ContentKeyType = "CommonEncryptionCbcs"
)

type ContentKey struct {
	ID                    string         `json:"id"`
	Name                  string         `json:"name"`
	Type                  ContentKeyType `json:"type"`
	Key                   []byte         `json:"key"`
	AssetID               string         `json:"assetId"`
	AuthorizationPolicyID string         `json:"authorizationPolicyId,omitempty"`
}

// Policy is a pre-provisioned authorization or delivery policy.
type Policy struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type LocatorType string

const LocatorOnDemandOrigin LocatorType = "OnDemandOrigin"

type AccessPermission string

const AccessRead AccessPermission = "Read"

type Locator struct {
	ID             string           `json:"id"`
	AssetID        string           `json:"assetId"`
	Type           LocatorType      `json:"type"`
	Permissions    AccessPermission `json:"permissions"`
	Path           string           `json:"path"`
	ExpirationTime time.Time        `json:"expirationDateTime"`
}
