package services

import (
  "context"
  "fmt"
  "time"

  "github.com/golang-jwt/jwt/v5"
  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/harborhq/harbor-backend/internal/logger"
  "github.com/harborhq/harbor-backend/internal/repos"
  "github.com/harborhq/harbor-backend/internal/requestdata"
)

type JWTClaims struct {
  jwt.RegisteredClaims
}

// AuthService issues and verifies store-scoped access tokens. Every
// authenticated request acts on behalf of exactly one store.
type AuthService interface {
  IssueStoreToken(ctx context.Context, storeID uuid.UUID) (string, error)
  SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
  GetAccessTTL() time.Duration
}

type authService struct {
  db           *gorm.DB
  log          *logger.Logger
  storeRepo    repos.StoreRepo
  jwtSecretKey string
  accessTTL    time.Duration
}

func NewAuthService(
  db *gorm.DB,
  log *logger.Logger,
  storeRepo repos.StoreRepo,
  jwtSecretKey string,
  accessTTL time.Duration,
) AuthService {
  serviceLog := log.With("service", "AuthService")
  if accessTTL <= 0 {
    accessTTL = 24 * time.Hour
  }
  return &authService{
    db:           db,
    log:          serviceLog,
    storeRepo:    storeRepo,
    jwtSecretKey: jwtSecretKey,
    accessTTL:    accessTTL,
  }
}

func (as *authService) IssueStoreToken(ctx context.Context, storeID uuid.UUID) (string, error) {
  if storeID == uuid.Nil {
    return "", fmt.Errorf("missing store id")
  }
  stores, err := as.storeRepo.GetByIDs(ctx, nil, []uuid.UUID{storeID})
  if err != nil {
    return "", fmt.Errorf("Error retrieving store: %w", err)
  }
  if len(stores) == 0 || stores[0] == nil {
    return "", fmt.Errorf("store not found")
  }

  claims := JWTClaims{
    RegisteredClaims: jwt.RegisteredClaims{
      Subject:   storeID.String(),
      ExpiresAt: jwt.NewNumericDate(time.Now().Add(as.accessTTL)),
      IssuedAt:  jwt.NewNumericDate(time.Now()),
    },
  }
  token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
  return token.SignedString([]byte(as.jwtSecretKey))
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
  if tokenString == "" {
    return ctx, nil
  }
  parsedToken, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
    if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
      return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
    }
    return []byte(as.jwtSecretKey), nil
  })
  if err != nil {
    return ctx, fmt.Errorf("Failed to parse token: %w", err)
  }
  claims, ok := parsedToken.Claims.(*JWTClaims)
  if !ok || !parsedToken.Valid {
    return ctx, fmt.Errorf("Invalid or expired JWT token")
  }
  storeID, err := uuid.Parse(claims.Subject)
  if err != nil {
    return ctx, fmt.Errorf("Invalid store id in token: %w", err)
  }
  rd := &requestdata.RequestData{
    TokenString: tokenString,
    StoreID:     storeID,
  }
  ctx = requestdata.WithRequestData(ctx, rd)
  return ctx, nil
}

func (as *authService) GetAccessTTL() time.Duration {
  return as.accessTTL
}
