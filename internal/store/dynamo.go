package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/mixelka/slackmail/internal/tenant"
	"github.com/mixelka/slackmail/pkg/models"
)

// Single-table key layout:
//
//	TENANT#<teamID>     CONFIG              TenantConfig
//	TENANT#<teamID>     DOMAIN#<domainID>   Domain
//	TENANT#<teamID>     CHANNEL#<channelID> ChannelConfig
//	DOMAINNAME#<domain> REF                 DomainRef
//	LOG#<teamID>        <sentAt>#<msgID>    EmailLog (TTL-expired)
type item struct {
	PK        string `dynamodbav:"PK"`
	SK        string `dynamodbav:"SK"`
	Data      string `dynamodbav:"Data"`
	Timestamp string `dynamodbav:"Timestamp"`
	TTL       int64  `dynamodbav:"TTL,omitempty"`
}

// Client is the DynamoDB-backed configuration store
type Client struct {
	db    *dynamodb.Client
	table string
}

// New creates a configuration store client
func New(cfg aws.Config, table string) *Client {
	return &Client{
		db:    dynamodb.NewFromConfig(cfg),
		table: table,
	}
}

func (c *Client) putJSON(ctx context.Context, pk, sk string, v any, ttl int64) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal item data: %w", err)
	}

	av, err := attributevalue.MarshalMap(item{
		PK:        pk,
		SK:        sk,
		Data:      string(data),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		TTL:       ttl,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal item: %w", err)
	}

	_, err = c.db.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(c.table),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("failed to put item %s/%s: %w", pk, sk, err)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, pk, sk string, out any) error {
	result, err := c.db.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(c.table),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: pk},
			"SK": &types.AttributeValueMemberS{Value: sk},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to get item %s/%s: %w", pk, sk, err)
	}
	if result.Item == nil {
		return tenant.ErrNotFound
	}

	var it item
	if err := attributevalue.UnmarshalMap(result.Item, &it); err != nil {
		return fmt.Errorf("failed to unmarshal item %s/%s: %w", pk, sk, err)
	}
	if err := json.Unmarshal([]byte(it.Data), out); err != nil {
		return fmt.Errorf("failed to decode item data %s/%s: %w", pk, sk, err)
	}
	return nil
}

func (c *Client) queryJSON(ctx context.Context, pk, skPrefix string) ([]string, error) {
	result, err := c.db.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(c.table),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :sk)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: pk},
			":sk": &types.AttributeValueMemberS{Value: skPrefix},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", pk, err)
	}

	payloads := make([]string, 0, len(result.Items))
	for _, raw := range result.Items {
		var it item
		if err := attributevalue.UnmarshalMap(raw, &it); err != nil {
			continue
		}
		payloads = append(payloads, it.Data)
	}
	return payloads, nil
}

// GetTenant returns a workspace's tenant configuration
func (c *Client) GetTenant(ctx context.Context, teamID string) (*models.TenantConfig, error) {
	var cfg models.TenantConfig
	if err := c.getJSON(ctx, "TENANT#"+teamID, "CONFIG", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// PutTenant upserts a tenant configuration (install, reinstall, token
// rotation)
func (c *Client) PutTenant(ctx context.Context, cfg *models.TenantConfig) error {
	return c.putJSON(ctx, "TENANT#"+cfg.TeamID, "CONFIG", cfg, 0)
}

// ListDomains returns all sending domains configured for a tenant
func (c *Client) ListDomains(ctx context.Context, teamID string) ([]models.Domain, error) {
	payloads, err := c.queryJSON(ctx, "TENANT#"+teamID, "DOMAIN#")
	if err != nil {
		return nil, err
	}

	domains := make([]models.Domain, 0, len(payloads))
	for _, data := range payloads {
		var d models.Domain
		if err := json.Unmarshal([]byte(data), &d); err != nil {
			continue
		}
		domains = append(domains, d)
	}
	return domains, nil
}

// PutDomain upserts a sending domain and its name→tenant reference
func (c *Client) PutDomain(ctx context.Context, d *models.Domain) error {
	if err := c.putJSON(ctx, "TENANT#"+d.TeamID, "DOMAIN#"+d.DomainID, d, 0); err != nil {
		return err
	}
	ref := models.DomainRef{TeamID: d.TeamID, DomainID: d.DomainID}
	return c.putJSON(ctx, "DOMAINNAME#"+strings.ToLower(d.Domain), "REF", &ref, 0)
}

// GetDomainByName resolves a domain name to its owning tenant and domain
// id (inbound routing)
func (c *Client) GetDomainByName(ctx context.Context, domain string) (*models.DomainRef, error) {
	var ref models.DomainRef
	if err := c.getJSON(ctx, "DOMAINNAME#"+strings.ToLower(domain), "REF", &ref); err != nil {
		return nil, err
	}
	return &ref, nil
}

// GetChannelConfig returns the channel→domain mapping for one channel
func (c *Client) GetChannelConfig(ctx context.Context, teamID, channelID string) (*models.ChannelConfig, error) {
	var cc models.ChannelConfig
	if err := c.getJSON(ctx, "TENANT#"+teamID, "CHANNEL#"+channelID, &cc); err != nil {
		return nil, err
	}
	return &cc, nil
}

// PutChannelConfig upserts a channel→domain mapping
func (c *Client) PutChannelConfig(ctx context.Context, cc *models.ChannelConfig) error {
	return c.putJSON(ctx, "TENANT#"+cc.TeamID, "CHANNEL#"+cc.ChannelID, cc, 0)
}

// ChannelForDomain returns the enabled channel mapped to a sending
// domain, or ErrNotFound when no channel is configured for it
func (c *Client) ChannelForDomain(ctx context.Context, teamID, domainID string) (*models.ChannelConfig, error) {
	payloads, err := c.queryJSON(ctx, "TENANT#"+teamID, "CHANNEL#")
	if err != nil {
		return nil, err
	}

	for _, data := range payloads {
		var cc models.ChannelConfig
		if err := json.Unmarshal([]byte(data), &cc); err != nil {
			continue
		}
		if cc.DomainID == domainID && cc.Enabled {
			return &cc, nil
		}
	}
	return nil, tenant.ErrNotFound
}

// PutEmailLog appends an outbound send audit record. The TTL attribute
// lets DynamoDB expire it after the retention window.
func (c *Client) PutEmailLog(ctx context.Context, log *models.EmailLog) error {
	sk := log.SentAt.UTC().Format(time.RFC3339) + "#" + log.MessageID
	return c.putJSON(ctx, "LOG#"+log.TeamID, sk, log, log.TTL)
}
