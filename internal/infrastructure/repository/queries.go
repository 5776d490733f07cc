package repository

import (
	"fmt"
	"strings"
)

const etchPacketResponseQuery = `{
  id
  eid
  name
  detailsURL
  documentGroup {
    id
    eid
    status
    files
    signers {
      id
      eid
      aliasId
      routingOrder
      name
      email
      status
      signActionType
    }
  }
}`

const createEtchPacketMutation = `
mutation CreateEtchPacket (
    $name: String,
    $files: [EtchFile!],
    $isDraft: Boolean,
    $isTest: Boolean,
    $mergePDFs: Boolean,
    $signatureEmailSubject: String,
    $signatureEmailBody: String,
    $signatureProvider: String,
    $signaturePageOptions: JSON,
    $signers: [JSON!],
    $webhookURL: String,
    $replyToName: String,
    $replyToEmail: String,
    $data: JSON,
    $enableEmails: JSON,
    $createCastTemplatesFromUploads: Boolean,
    $duplicateCasts: Boolean=false,
  ) {
    createEtchPacket (
      name: $name,
      files: $files,
      isDraft: $isDraft,
      isTest: $isTest,
      mergePDFs: $mergePDFs,
      signatureEmailSubject: $signatureEmailSubject,
      signatureEmailBody: $signatureEmailBody,
      signatureProvider: $signatureProvider,
      signaturePageOptions: $signaturePageOptions,
      signers: $signers,
      webhookURL: $webhookURL,
      replyToName: $replyToName,
      replyToEmail: $replyToEmail,
      data: $data,
      enableEmails: $enableEmails,
      createCastTemplatesFromUploads: $createCastTemplatesFromUploads,
      duplicateCasts: $duplicateCasts
    )
      ` + etchPacketResponseQuery + `
  }
`

const forgeSubmitResponseQuery = `{
  id
  eid
  status
  resolvedPayload
  currentStep
  completedAt
  createdAt
  updatedAt
  signer {
    name
    email
    status
    routingOrder
  }
  weldData {
    id
    eid
    status
    isTest
    isComplete
    agents
  }
}`

const forgeSubmitMutation = `
mutation ForgeSubmit(
    $forgeEid: String!,
    $weldDataEid: String,
    $submissionEid: String,
    $payload: JSON!,
    $currentStep: Int,
    $complete: Boolean,
    $isTest: Boolean,
    $timezone: String,
    $groupArrayId: String,
    $groupArrayIndex: Int,
    $errorType: String,
) {
    forgeSubmit (
        forgeEid: $forgeEid,
        weldDataEid: $weldDataEid,
        submissionEid: $submissionEid,
        payload: $payload,
        currentStep: $currentStep,
        complete: $complete,
        isTest: $isTest,
        timezone: $timezone,
        groupArrayId: $groupArrayId,
        groupArrayIndex: $groupArrayIndex,
        errorType: $errorType
    ) ` + forgeSubmitResponseQuery + `
}
`

const generateEtchSignURLMutation = `
mutation ($signerEid: String!, $clientUserId: String!) {
    generateEtchSignURL (signerEid: $signerEid, clientUserId: $clientUserId)
}
`

const currentUserQuery = `{
  currentUser {
    name
    email
    eid
    role
    organizations {
      eid
      name
      slug
      casts {
        eid
        name
      }
    }
  }
}`

const weldsQuery = `{
  currentUser {
    organizations {
      welds {
        eid
        slug
        title
      }
    }
  }
}`

var defaultCastFields = []string{"eid", "title", "fieldInfo"}

func castQuery(eid string, fields []string) string {
	if len(fields) == 0 {
		fields = defaultCastFields
	}
	return fmt.Sprintf(`{
  cast(eid: %q) {
    %s
  }
}`, eid, strings.Join(fields, " "))
}

func castsQuery(fields []string, all bool) string {
	if len(fields) == 0 {
		fields = defaultCastFields
	}
	args := "(isTemplate: true)"
	if all {
		args = ""
	}
	return fmt.Sprintf(`{
  currentUser {
    organizations {
      casts %s {
        %s
      }
    }
  }
}`, args, strings.Join(fields, " "))
}
